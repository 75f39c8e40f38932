// Package response writes the API's uniform JSON envelope.
package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/redfire-io/pcb-tutor/pkg/errors"
	"github.com/redfire-io/pcb-tutor/pkg/server/middleware"
)

// Response is the envelope for every API reply.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// OK writes a success envelope with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(errors.OK.HTTPStatus(), &Response{
		Code:      errors.OK.Code,
		Message:   errors.OK.Msg,
		Data:      data,
		RequestID: middleware.GetRequestID(c.Request.Context()),
		Timestamp: time.Now().UnixMilli(),
	})
}

// Fail writes an error envelope from an Errno.
func Fail(c *gin.Context, e *errors.Errno) {
	c.JSON(e.HTTPStatus(), &Response{
		Code:      e.Code,
		Message:   e.Msg,
		RequestID: middleware.GetRequestID(c.Request.Context()),
		Timestamp: time.Now().UnixMilli(),
	})
}

// FailWithData writes an error envelope carrying a data payload, for
// errors that reference an existing resource.
func FailWithData(c *gin.Context, e *errors.Errno, data interface{}) {
	c.JSON(e.HTTPStatus(), &Response{
		Code:      e.Code,
		Message:   e.Msg,
		Data:      data,
		RequestID: middleware.GetRequestID(c.Request.Context()),
		Timestamp: time.Now().UnixMilli(),
	})
}

// FailWithError converts any error into an envelope. Non-Errno errors map
// to an internal error.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}
