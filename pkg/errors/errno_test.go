package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMakeCode(t *testing.T) {
	if got := MakeCode(20, 1, 1); got != 2001001 {
		t.Fatalf("MakeCode(20,1,1) = %d", got)
	}
	if got := MakeCode(0, 4, 0); got != 4000 {
		t.Fatalf("MakeCode(0,4,0) = %d", got)
	}
}

func TestErrnoIsMatchesByCode(t *testing.T) {
	err := ErrTopicMismatch.WithMessage("\"mitosis\" is not a Chemistry topic")

	if !stderrors.Is(err, ErrTopicMismatch) {
		t.Fatal("WithMessage copy should match the registered errno")
	}
	if stderrors.Is(err, ErrInvalidSubject) {
		t.Fatal("different codes must not match")
	}
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrUpstream.WithCause(cause)

	if !stderrors.Is(err, ErrUpstream) {
		t.Fatal("cause copy should keep its code")
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("Unwrap should expose the cause")
	}
	if ErrUpstream.Unwrap() != nil {
		t.Fatal("registered errno must not be mutated")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Fatal("nil in, nil out")
	}

	e := FromError(ErrNoMaterial)
	if e.Code != ErrNoMaterial.Code {
		t.Fatalf("errno passthrough changed code: %d", e.Code)
	}

	wrapped := FromError(fmt.Errorf("boom"))
	if wrapped.Code != ErrInternal.Code {
		t.Fatalf("plain error should map to ErrInternal, got %d", wrapped.Code)
	}
	if wrapped.HTTPStatus() != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", wrapped.HTTPStatus())
	}
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrNoMaterial.Code)
	if !ok || e.Msg != ErrNoMaterial.Msg {
		t.Fatalf("Lookup(%d) = %v, %v", ErrNoMaterial.Code, e, ok)
	}
	if _, ok := Lookup(9999999); ok {
		t.Fatal("unregistered code should not resolve")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(ErrInvalidSubject); got != ErrInvalidSubject.Code {
		t.Fatalf("GetCode = %d", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != -1 {
		t.Fatalf("plain error should give -1, got %d", got)
	}
}
