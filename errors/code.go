package errors

import (
	"net/http"
)

// CodeSessionExpired is deliberately not a standard HTTP status: the
// transport answers session expiry with a 200 and a body flag, so the code
// only serves to recognize the condition on the way out.
const CodeSessionExpired = 440

func BadRequest() ErrorEnricher     { return WithCode(http.StatusBadRequest) }
func Forbidden() ErrorEnricher      { return WithCode(http.StatusForbidden) }
func NotFound() ErrorEnricher       { return WithCode(http.StatusNotFound) }
func SessionExpired() ErrorEnricher { return WithCode(CodeSessionExpired) }

// IsSessionExpired reports whether err was enriched with SessionExpired.
func IsSessionExpired(err error) bool {
	if err, ok := err.(Error); ok {
		return err.Code() == CodeSessionExpired
	}
	return false
}
