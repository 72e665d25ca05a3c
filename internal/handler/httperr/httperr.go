package httperr

import (
	"net/http"

	"facility-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort derives the status from the error kind. Unclassified errors never leak their message.
func Abort(c *gin.Context, err error) {
	kind, ok := errs.KindOf(err)
	if !ok {
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	if kind == errs.KindConcurrency {
		c.Header("Retry-After", "1")
	}
	AbortWithError(c, StatusFor(kind), err, err.Error(), gin.H{"kind": string(kind)})
}

func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusUnprocessableEntity
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindPermission:
		return http.StatusForbidden
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindPrecondition:
		return http.StatusPreconditionFailed
	case errs.KindConcurrency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
