package service

import (
	"context"
	"strings"

	"github.com/notfakie/jellyseerr/database/model"
	"github.com/notfakie/jellyseerr/logger"
	"github.com/notfakie/jellyseerr/util/crypto"
)

// AuthService reconciles provider identities against the local user table.
// Every flow shares the same final shape: resolve user, mutate or create,
// persist, and hand the user back for session binding.
type AuthService struct {
	settingService  SettingService
	userService     UserService
	plexService     PlexService
	jellyfinService JellyfinService
	policy          AccessPolicy
}

// JellyfinLoginRequest carries the credential assertion of a Jellyfin/Emby
// sign-in. Hostname is honored only while no server is configured yet; Email
// is mandatory the first time an unmatched account is provisioned.
type JellyfinLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Hostname string `json:"hostname"`
	Email    string `json:"email"`
}

// LocalLogin validates an email/password pair. On an empty user table the
// credentials bootstrap the administrator account.
func (s *AuthService) LocalLogin(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, newAuthError(ErrKindValidation, "You must provide both an email address and a password.")
	}

	enabled, err := s.settingService.GetLocalLogin()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, newAuthError(ErrKindValidation, "Password sign-in is disabled.")
	}

	user, err := s.userService.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		count, err := s.userService.CountUsers()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
		}
		return s.createAdminFromLocal(email, password)
	}

	if !user.IsLocalUser() || !crypto.CheckPasswordHash(user.Password, password) {
		return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
	}

	admin, err := s.userService.GetAdminUser()
	if err != nil {
		return nil, err
	}

	if !user.IsPlexUser() && admin != nil && admin.IsPlexUser() && admin.PlexToken != "" {
		// Best-effort enrichment: a matching shared Plex account may be
		// linked silently. Failures never block a local login.
		if err := s.enrichFromPlex(ctx, user, admin); err != nil {
			logger.Warningf("plex enrichment skipped for user %d: %v", user.Id, err)
		}
	} else if user.IsPlexUser() && admin != nil && admin.IsPlexUser() &&
		user.PlexId != admin.PlexId && admin.PlexToken != "" {
		access, err := s.plexService.CheckUserAccess(ctx, admin.PlexToken, user.PlexId)
		if err != nil || !access {
			return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
		}
	}

	return user, nil
}

func (s *AuthService) createAdminFromLocal(email, password string) (*model.User, error) {
	hashed, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:       email,
		Password:    hashed,
		Permissions: model.PermissionAdmin,
		Avatar:      GravatarURL(email),
	}
	if err := s.userService.CreateUser(user); err != nil {
		return nil, err
	}
	logger.Infof("administrator account created via password sign-in (user %d)", user.Id)
	return user, nil
}

func (s *AuthService) enrichFromPlex(ctx context.Context, user, admin *model.User) error {
	users, err := s.plexService.GetUsers(ctx, admin.PlexToken)
	if err != nil {
		return err
	}
	for _, shared := range users {
		if !strings.EqualFold(shared.Email, user.Email) {
			continue
		}
		access, err := s.plexService.CheckUserAccess(ctx, admin.PlexToken, shared.Id)
		if err != nil {
			return err
		}
		if !access {
			return nil
		}
		user.PlexId = shared.Id
		user.PlexUsername = shared.Username
		if shared.Thumb != "" {
			user.Avatar = shared.Thumb
		}
		if shared.Email != "" {
			user.Email = shared.Email
		}
		return s.userService.SaveUser(user)
	}
	return nil
}

// PlexLogin resolves a Plex auth token to a local user. A non-zero
// sessionUserID marks the link-my-open-session path: the session's user is
// reconciled instead of searching by identity.
func (s *AuthService) PlexLogin(ctx context.Context, authToken string, sessionUserID int) (*model.User, error) {
	if authToken == "" {
		return nil, newAuthError(ErrKindValidation, "You must provide a Plex auth token.")
	}

	account, err := s.plexService.GetUser(ctx, authToken)
	if err != nil {
		// The endpoint reports provider failures, bad tokens included, as a
		// generic failure.
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	var user *model.User
	if sessionUserID != 0 {
		user, err = s.userService.GetUserByID(sessionUserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, newAuthError(ErrKindInternal, MsgInternalError)
		}
	} else {
		user, err = s.userService.GetUserByPlexID(account.Id)
		if err != nil {
			return nil, err
		}
		if user == nil && account.Email != "" {
			user, err = s.userService.GetUserByEmail(account.Email)
			if err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		count, err := s.userService.CountUsers()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return s.createAdminFromPlex(account, authToken)
		}

		allowed, err := s.policy.CheckPlexAccess(ctx, nil, account)
		if err != nil || !allowed {
			return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
		}
		newLogins, err := s.policy.NewPlexLoginAllowed()
		if err != nil {
			return nil, err
		}
		if !newLogins {
			return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
		}
		return s.createUserFromPlex(account, authToken)
	}

	allowed, err := s.policy.CheckPlexAccess(ctx, user, account)
	if err != nil || !allowed {
		return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
	}

	user.PlexId = account.Id
	user.PlexToken = authToken
	user.PlexUsername = account.Username
	if account.Thumb != "" {
		user.Avatar = account.Thumb
	}
	if user.Email == "" && account.Email != "" {
		user.Email = account.Email
	}
	if err := s.userService.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) createAdminFromPlex(account *PlexAccount, authToken string) (*model.User, error) {
	user := &model.User{
		Email:        account.Email,
		Permissions:  model.PermissionAdmin,
		Avatar:       account.Thumb,
		PlexId:       account.Id,
		PlexToken:    authToken,
		PlexUsername: account.Username,
	}
	if err := s.userService.CreateUser(user); err != nil {
		return nil, err
	}
	logger.Infof("administrator account created via Plex sign-in (user %d)", user.Id)
	return user, nil
}

func (s *AuthService) createUserFromPlex(account *PlexAccount, authToken string) (*model.User, error) {
	permissions, err := s.settingService.GetDefaultPermissions()
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        account.Email,
		Permissions:  permissions,
		Avatar:       account.Thumb,
		PlexId:       account.Id,
		PlexToken:    authToken,
		PlexUsername: account.Username,
	}
	if err := s.userService.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// JellyfinLogin authenticates against the configured (or, on first run, the
// supplied) Jellyfin/Emby host and reconciles the resulting account.
func (s *AuthService) JellyfinLogin(ctx context.Context, req *JellyfinLoginRequest, sessionUserID int) (*model.User, error) {
	if req.Username == "" {
		return nil, newAuthError(ErrKindValidation, "You must provide a username.")
	}

	configuredHost, err := s.settingService.GetJellyfinHost()
	if err != nil {
		return nil, err
	}
	host := configuredHost
	if host == "" {
		// First-run bootstrap: the request may carry the hostname once.
		host = strings.TrimSuffix(req.Hostname, "/")
	}
	if host == "" {
		return nil, newAuthError(ErrKindValidation, "No Jellyfin server has been configured.")
	}

	// The remote call needs the device id up front so repeated logins reuse
	// the same device registration.
	deviceID := DeriveDeviceID(req.Username)
	if existing, err := s.userService.GetUserByJellyfinUsername(req.Username); err != nil {
		return nil, err
	} else if existing != nil && existing.JellyfinDeviceId != "" {
		deviceID = existing.JellyfinDeviceId
	}

	account, err := s.jellyfinService.Login(ctx, host, req.Username, req.Password, deviceID)
	if err != nil {
		return nil, err
	}

	if configuredHost == "" {
		// Persist the bootstrap host and the server it identified as.
		if err := s.settingService.SetJellyfinHost(host); err != nil {
			return nil, err
		}
		if err := s.settingService.SetJellyfinServerID(account.ServerId); err != nil {
			return nil, err
		}
		if serverType, err := s.settingService.GetMediaServerType(); err == nil && serverType == "" {
			if err := s.settingService.SetMediaServerType(MediaServerJellyfin); err != nil {
				return nil, err
			}
		}
	}

	avatarHost := host
	if externalHost, err := s.settingService.GetJellyfinExternalHost(); err == nil && externalHost != "" {
		avatarHost = externalHost
	}

	var user *model.User
	if sessionUserID != 0 {
		user, err = s.userService.GetUserByID(sessionUserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, newAuthError(ErrKindInternal, MsgInternalError)
		}
	} else {
		user, err = s.userService.GetUserByJellyfinUserID(account.Id)
		if err != nil {
			return nil, err
		}
		if user == nil && req.Email != "" {
			user, err = s.userService.GetUserByEmail(req.Email)
			if err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		count, err := s.userService.CountUsers()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			newLogins, err := s.policy.NewJellyfinLoginAllowed()
			if err != nil {
				return nil, err
			}
			if !newLogins {
				return nil, newAuthError(ErrKindAccessDenied, MsgAccessDenied)
			}
		}
		if req.Email == "" {
			return nil, newAuthError(ErrKindAddEmailRequired, MsgAddEmailRequired)
		}

		permissions := model.PermissionAdmin
		if count > 0 {
			permissions, err = s.settingService.GetDefaultPermissions()
			if err != nil {
				return nil, err
			}
		}
		user = &model.User{
			Email:             req.Email,
			Permissions:       permissions,
			Avatar:            s.jellyfinService.AvatarURL(avatarHost, account),
			JellyfinUserId:    account.Id,
			JellyfinUsername:  account.Name,
			JellyfinAuthToken: account.AccessToken,
			JellyfinDeviceId:  deviceID,
		}
		if err := s.userService.CreateUser(user); err != nil {
			return nil, err
		}
		if count == 0 {
			logger.Infof("administrator account created via Jellyfin sign-in (user %d)", user.Id)
		}
		return user, nil
	}

	user.JellyfinUserId = account.Id
	user.JellyfinUsername = account.Name
	user.JellyfinAuthToken = account.AccessToken
	user.JellyfinDeviceId = deviceID
	user.Avatar = s.jellyfinService.AvatarURL(avatarHost, account)
	if user.Username == account.Name {
		// The provider identity is the authoritative display name now.
		user.Username = ""
	}
	if err := s.userService.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UnlinkPlex clears the Plex linkage on a local-credential user. The row is
// kept; only the provider fields are reset.
func (s *AuthService) UnlinkPlex(userID int) error {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return newAuthError(ErrKindInternal, MsgInternalError)
	}
	if !user.IsLocalUser() {
		return newAuthError(ErrKindInternal, "Only password sign-in users can unlink Plex.")
	}
	user.PlexId = 0
	user.PlexToken = ""
	user.PlexUsername = ""
	return s.userService.SaveUser(user)
}
