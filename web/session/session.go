// Package session binds the HTTP session to a local user id. The session
// never stores anything else.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginUserID = "LOGIN_USER_ID"

// SetLoginUser associates the session with a user id.
func SetLoginUser(c *gin.Context, userID int) error {
	s := sessions.Default(c)
	s.Set(loginUserID, userID)
	return s.Save()
}

// SetMaxAge configures the session lifetime. It takes effect on the next
// Save, so call it before SetLoginUser.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
}

// GetLoginUserID returns the bound user id, or 0 when the session carries none.
func GetLoginUserID(c *gin.Context) int {
	s := sessions.Default(c)
	if obj := s.Get(loginUserID); obj != nil {
		if id, ok := obj.(int); ok {
			return id
		}
	}
	return 0
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUserID(c) != 0
}

// ClearSession destroys the session association.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie("jellyseerr", "", -1, "/", "", false, true)
	return nil
}
