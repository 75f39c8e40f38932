package errors

import "net/http"

// OK represents a successful operation.
var OK = Register(&Errno{
	Code: 0,
	HTTP: http.StatusOK,
	Msg:  "Success",
})

// Common request errors.
var (
	ErrBadRequest = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP: http.StatusBadRequest,
		Msg:  "Bad request",
	})

	ErrInvalidParam = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP: http.StatusBadRequest,
		Msg:  "Invalid parameter",
	})

	ErrMissingParam = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 2),
		HTTP: http.StatusBadRequest,
		Msg:  "Missing required parameter",
	})
)

// Common resource and infrastructure errors.
var (
	ErrNotFound = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryNotFound, 0),
		HTTP: http.StatusNotFound,
		Msg:  "Resource not found",
	})

	ErrConflict = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP: http.StatusConflict,
		Msg:  "Resource conflict",
	})

	ErrInternal = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Internal server error",
	})

	ErrDatabase = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryDatabase, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Database error",
	})

	ErrCache = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryCache, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Cache error",
	})

	ErrUpstream = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryUpstream, 0),
		HTTP: http.StatusBadGateway,
		Msg:  "Upstream service error",
	})

	ErrTimeout = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryTimeout, 0),
		HTTP: http.StatusRequestTimeout,
		Msg:  "Request timed out",
	})
)

// Tutor service errors.
var (
	ErrInvalidSubject = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryRequest, 0),
		HTTP: http.StatusBadRequest,
		Msg:  "Invalid subject",
	})

	ErrTopicMismatch = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryRequest, 1),
		HTTP: http.StatusBadRequest,
		Msg:  "Topic does not belong to the selected subject",
	})

	ErrNoMaterial = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryNotFound, 0),
		HTTP: http.StatusNotFound,
		Msg:  "No relevant textbook material found for this topic",
	})

	ErrDatasetExists = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryConflict, 0),
		HTTP: http.StatusConflict,
		Msg:  "Dataset already indexed",
	})

	ErrGeneration = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryUpstream, 0),
		HTTP: http.StatusBadGateway,
		Msg:  "Question generation failed",
	})

	ErrIndexing = Register(&Errno{
		Code: MakeCode(ServiceTutor, CategoryInternal, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Dataset indexing failed",
	})
)
