package service

import (
	"context"
	"strings"

	"github.com/notfakie/jellyseerr/database/model"
)

// AccessPolicy decides whether an external account may obtain or keep a local
// user record, based on the administrator's relationship to the provider.
type AccessPolicy struct {
	userService    UserService
	settingService SettingService
	plexService    PlexService
}

// CheckPlexAccess evaluates whether a Plex account may be linked to a local
// user. The matched local user, when one exists, is passed so the
// administrator's own unlinked row can claim its account.
func (p *AccessPolicy) CheckPlexAccess(ctx context.Context, user *model.User, account *PlexAccount) (bool, error) {
	admin, err := p.userService.GetAdminUser()
	if err != nil {
		return false, err
	}
	if admin == nil {
		// Empty table; bootstrap is handled before policy applies.
		return false, nil
	}

	if admin.PlexId != 0 && account.Id == admin.PlexId {
		return true, nil
	}
	if admin.PlexId == 0 {
		// The administrator has no link yet; their own row, or an account
		// carrying their email, may claim it.
		if user != nil && user.Id == admin.Id {
			return true, nil
		}
		if account.Email != "" && strings.EqualFold(account.Email, admin.Email) {
			return true, nil
		}
	}
	if admin.IsPlexUser() && admin.PlexToken != "" {
		return p.plexService.CheckUserAccess(ctx, admin.PlexToken, account.Id)
	}
	return false, nil
}

// NewPlexLoginAllowed gates auto-provisioning of unknown Plex accounts.
func (p *AccessPolicy) NewPlexLoginAllowed() (bool, error) {
	return p.settingService.GetNewPlexLogin()
}

// NewJellyfinLoginAllowed gates auto-provisioning of accounts that
// authenticated against the configured host but were never imported.
func (p *AccessPolicy) NewJellyfinLoginAllowed() (bool, error) {
	return p.settingService.GetNewJellyfinLogin()
}
