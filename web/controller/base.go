// Package controller provides the HTTP handlers of the jellyseerr auth API.
package controller

import (
	"net/http"

	"github.com/notfakie/jellyseerr/web/entity"
	"github.com/notfakie/jellyseerr/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers.
type BaseController struct{}

// checkLogin aborts requests that carry no authenticated session.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, entity.ApiError{
			Status:  http.StatusInternalServerError,
			Message: "Please sign in.",
		})
		return
	}
	c.Next()
}
