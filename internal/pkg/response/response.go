// Package response wraps the proxyutil envelope so handlers emit a
// uniform {code, message, data} body.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// apiErr carries a service error code through proxyutil, which reads
// it via the Code() accessor.
type apiErr struct {
	code uint32
	msg  string
}

func (e apiErr) Error() string { return e.msg }
func (e apiErr) Code() uint32  { return e.code }

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, http.StatusOK, apiErr{code: uint32(code), msg: message})
}
