package service

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/notfakie/jellyseerr/database"
	"github.com/notfakie/jellyseerr/database/model"
	"github.com/notfakie/jellyseerr/logger"
	"github.com/notfakie/jellyseerr/util/crypto"

	"github.com/google/uuid"
)

const recoveryLinkLifetime = 24 * time.Hour

// UserService is the store for local user records plus the email/password
// credential and reset-token logic.
type UserService struct {
	settingService SettingService

	// notifyReset dispatches the recovery link. The default implementation
	// logs it; mail delivery hangs off this hook.
	notifyReset func(user *model.User, link string)
}

func (s *UserService) firstOrNil(query string, args ...any) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).Where(query, args...).First(user).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(id int) (*model.User, error) {
	return s.firstOrNil("id = ?", id)
}

func (s *UserService) GetUserByEmail(email string) (*model.User, error) {
	return s.firstOrNil("LOWER(email) = LOWER(?)", email)
}

func (s *UserService) GetUserByPlexID(plexID int64) (*model.User, error) {
	return s.firstOrNil("plex_id = ?", plexID)
}

func (s *UserService) GetUserByJellyfinUserID(jellyfinUserID string) (*model.User, error) {
	return s.firstOrNil("jellyfin_user_id = ?", jellyfinUserID)
}

func (s *UserService) GetUserByJellyfinUsername(username string) (*model.User, error) {
	return s.firstOrNil("LOWER(jellyfin_username) = LOWER(?)", username)
}

// GetAdminUser returns the first-created user, which owns the media server
// link, or nil when the table is empty.
func (s *UserService) GetAdminUser() (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).Order("id asc").First(user).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) CountUsers() (int64, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(model.User{}).Count(&count).Error
	return count, err
}

func (s *UserService) CreateUser(user *model.User) error {
	return database.GetDB().Create(user).Error
}

func (s *UserService) SaveUser(user *model.User) error {
	return database.GetDB().Save(user).Error
}

// CheckUser verifies an email/password pair and returns the matching user, or
// nil when either the user is missing or the password does not match.
func (s *UserService) CheckUser(email, password string) *model.User {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}
	if user == nil || !user.IsLocalUser() {
		return nil
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	return user
}

// GravatarURL returns the default avatar for a local-credential user.
func GravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://gravatar.com/avatar/%x?default=mm&size=200", hash)
}

// RequestPasswordReset issues a recovery token for the given email. It never
// reveals whether the email matched a user.
func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsLocalUser() {
		logger.Infof("password reset requested for unknown or non-local email")
		return nil
	}

	expiration := time.Now().Add(recoveryLinkLifetime)
	user.ResetPasswordGuid = uuid.NewString()
	user.RecoveryLinkExpirationDate = &expiration
	if err := s.SaveUser(user); err != nil {
		return err
	}

	applicationURL, err := s.settingService.GetApplicationURL()
	if err != nil {
		applicationURL = ""
	}
	link := fmt.Sprintf("%s/resetpassword/%s", applicationURL, user.ResetPasswordGuid)
	if s.notifyReset != nil {
		s.notifyReset(user, link)
	} else {
		logger.Infof("recovery link generated for user %d", user.Id)
	}
	return nil
}

// ResetPassword consumes a recovery token. Unknown and expired tokens produce
// the same error so callers cannot probe which it was.
func (s *UserService) ResetPassword(guid, newPassword string) error {
	if len(newPassword) < 8 {
		return newAuthError(ErrKindValidation, "Password must be at least 8 characters long.")
	}
	if guid == "" {
		return newAuthError(ErrKindValidation, MsgInvalidResetLink)
	}

	user, err := s.firstOrNil("reset_password_guid = ?", guid)
	if err != nil {
		return err
	}
	if user == nil || user.RecoveryLinkExpirationDate == nil || user.RecoveryLinkExpirationDate.Before(time.Now()) {
		return newAuthError(ErrKindValidation, MsgInvalidResetLink)
	}

	hashed, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.RecoveryLinkExpirationDate = nil
	if err := s.SaveUser(user); err != nil {
		return err
	}

	logger.Infof("user %d reset their password", user.Id)
	return nil
}

// ClearExpiredRecoveryLinks removes guid/expiration pairs whose expiration
// has passed, so the two fields never linger half-valid.
func (s *UserService) ClearExpiredRecoveryLinks() error {
	db := database.GetDB()
	return db.Model(model.User{}).
		Where("recovery_link_expiration_date IS NOT NULL AND recovery_link_expiration_date < ?", time.Now()).
		Updates(map[string]any{
			"reset_password_guid":           "",
			"recovery_link_expiration_date": nil,
		}).Error
}
