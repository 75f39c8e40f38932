// Package json wraps JSON serialization for the service. It uses sonic on
// amd64/arm64 and falls back to encoding/json elsewhere, so callers never
// have to care which implementation is active.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

// Encoder writes JSON values to a stream.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder reads JSON values from a stream.
type Decoder interface {
	Decode(v interface{}) error
}

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder returns an encoder writing to w.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder returns a decoder reading from r.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

func init() {
	// Sonic only ships JIT codecs for amd64 and arm64.
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		api := sonic.ConfigDefault
		Marshal = api.Marshal
		Unmarshal = api.Unmarshal
		NewEncoder = func(w io.Writer) Encoder { return api.NewEncoder(w) }
		NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
		usingSonic = true
		return
	}
	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return stdjson.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
}

// MarshalIndent encodes v with the given prefix and indent. Indented output
// always goes through encoding/json.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return stdjson.MarshalIndent(v, prefix, indent)
}

// IsUsingSonic reports whether sonic is active.
func IsUsingSonic() bool {
	return usingSonic
}
