package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/notfakie/jellyseerr/web/entity"
	"github.com/notfakie/jellyseerr/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonError writes the uniform failure body.
func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ApiError{
		Status:  status,
		Message: message,
	})
}

// jsonAuthError maps a service failure to its HTTP status. Unknown errors
// surface as a generic 500 so no internals leak.
func jsonAuthError(c *gin.Context, err error) {
	if authErr, ok := service.AsAuthError(err); ok {
		jsonError(c, authErrorStatus(authErr), authErr.Message)
		return
	}
	jsonError(c, http.StatusInternalServerError, service.MsgInternalError)
}

func authErrorStatus(err *service.AuthError) int {
	switch err.Kind {
	case service.ErrKindUnauthorized:
		return http.StatusUnauthorized
	case service.ErrKindAccessDenied:
		return http.StatusForbidden
	case service.ErrKindAddEmailRequired:
		return http.StatusNotAcceptable
	default:
		// Validation failures intentionally surface as 500, matching the
		// historical wire contract clients already handle.
		return http.StatusInternalServerError
	}
}
