package controller

import (
	"net/http"

	"github.com/notfakie/jellyseerr/logger"
	"github.com/notfakie/jellyseerr/web/entity"
	"github.com/notfakie/jellyseerr/web/service"
	"github.com/notfakie/jellyseerr/web/session"

	"github.com/gin-gonic/gin"
)

// PlexLoginForm is the Plex sign-in request body.
type PlexLoginForm struct {
	AuthToken string `json:"authToken" form:"authToken"`
}

// LocalLoginForm is the email/password sign-in request body.
type LocalLoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ResetRequestForm asks for a password recovery link.
type ResetRequestForm struct {
	Email string `json:"email" form:"email"`
}

// ResetPasswordForm consumes a recovery link.
type ResetPasswordForm struct {
	Password string `json:"password" form:"password"`
}

// AuthController handles sign-in, sign-out and password recovery.
type AuthController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	authService    service.AuthService
}

// NewAuthController creates the controller and registers its routes.
func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth")

	g.GET("/me", a.checkLogin, a.me)
	g.POST("/plex", a.plexLogin)
	g.GET("/plex/unlink", a.checkLogin, a.plexUnlink)
	g.POST("/jellyfin", a.jellyfinLogin)
	g.POST("/local", a.localLogin)
	g.POST("/logout", a.logout)
	g.POST("/reset-password", a.requestPasswordReset)
	g.POST("/reset-password/:guid", a.resetPassword)
}

// me returns the user bound to the current session.
func (a *AuthController) me(c *gin.Context) {
	user, err := a.userService.GetUserByID(session.GetLoginUserID(c))
	if err != nil || user == nil {
		jsonError(c, http.StatusInternalServerError, service.MsgInternalError)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *AuthController) plexLogin(c *gin.Context) {
	var form PlexLoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusInternalServerError, "You must provide a Plex auth token.")
		return
	}

	user, err := a.authService.PlexLogin(c.Request.Context(), form.AuthToken, session.GetLoginUserID(c))
	if err != nil {
		logger.Warningf("failed Plex sign-in attempt, ip: %s", getRemoteIp(c))
		jsonAuthError(c, err)
		return
	}

	if err := a.bindSession(c, user.Id); err != nil {
		return
	}
	logger.Infof("user %d signed in via Plex, ip: %s", user.Id, getRemoteIp(c))
	c.JSON(http.StatusOK, user)
}

func (a *AuthController) plexUnlink(c *gin.Context) {
	userID := session.GetLoginUserID(c)
	if err := a.authService.UnlinkPlex(userID); err != nil {
		jsonAuthError(c, err)
		return
	}
	logger.Infof("user %d unlinked their Plex account", userID)
	c.Status(http.StatusNoContent)
}

func (a *AuthController) jellyfinLogin(c *gin.Context) {
	var form service.JellyfinLoginRequest
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusInternalServerError, "You must provide a username and password.")
		return
	}

	user, err := a.authService.JellyfinLogin(c.Request.Context(), &form, session.GetLoginUserID(c))
	if err != nil {
		logger.Warningf("failed Jellyfin sign-in attempt for %q, ip: %s", form.Username, getRemoteIp(c))
		jsonAuthError(c, err)
		return
	}

	if err := a.bindSession(c, user.Id); err != nil {
		return
	}
	logger.Infof("user %d signed in via Jellyfin, ip: %s", user.Id, getRemoteIp(c))
	c.JSON(http.StatusOK, user)
}

func (a *AuthController) localLogin(c *gin.Context) {
	var form LocalLoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusInternalServerError, "You must provide both an email address and a password.")
		return
	}

	user, err := a.authService.LocalLogin(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		logger.Warningf("failed password sign-in attempt for %q, ip: %s", form.Email, getRemoteIp(c))
		jsonAuthError(c, err)
		return
	}

	if err := a.bindSession(c, user.Id); err != nil {
		return
	}
	logger.Infof("user %d signed in via password, ip: %s", user.Id, getRemoteIp(c))
	c.JSON(http.StatusOK, user)
}

func (a *AuthController) logout(c *gin.Context) {
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to destroy session:", err)
		jsonError(c, http.StatusInternalServerError, "Something went wrong while logging out.")
		return
	}
	c.JSON(http.StatusOK, entity.StatusMsg{Status: "ok"})
}

// requestPasswordReset always reports success so the endpoint cannot be used
// to enumerate accounts.
func (a *AuthController) requestPasswordReset(c *gin.Context) {
	var form ResetRequestForm
	if err := c.ShouldBind(&form); err == nil && form.Email != "" {
		if err := a.userService.RequestPasswordReset(form.Email); err != nil {
			logger.Warning("password reset request failed:", err)
		}
	}
	c.JSON(http.StatusOK, entity.StatusMsg{Status: "ok"})
}

func (a *AuthController) resetPassword(c *gin.Context) {
	var form ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusInternalServerError, "You must provide a new password.")
		return
	}

	if err := a.userService.ResetPassword(c.Param("guid"), form.Password); err != nil {
		jsonAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.StatusMsg{Status: "ok"})
}

func (a *AuthController) bindSession(c *gin.Context, userID int) error {
	if maxAge, err := a.settingService.GetSessionMaxAge(); err == nil && maxAge > 0 {
		session.SetMaxAge(c, maxAge*60)
	}
	if err := session.SetLoginUser(c, userID); err != nil {
		logger.Warning("unable to save session:", err)
		jsonError(c, http.StatusInternalServerError, service.MsgInternalError)
		return err
	}
	return nil
}
