package model

import "time"

// Permission bitmask values. A user holding PermissionAdmin implicitly passes
// every permission check.
const (
	PermissionNone           = 0
	PermissionAdmin          = 2
	PermissionManageUsers    = 8
	PermissionManageRequests = 16
	PermissionRequest        = 32
)

// User is the local identity record. The first user ever created (id 1) is
// the administrator that owns the media server link; every other account is
// reconciled against it.
type User struct {
	Id          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string `json:"email" gorm:"uniqueIndex;not null"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	Permissions int    `json:"permissions"`
	Avatar      string `json:"avatar"`

	PlexId       int64  `json:"plexId" gorm:"index"`
	PlexUsername string `json:"plexUsername"`
	PlexToken    string `json:"-"`

	JellyfinUserId    string `json:"jellyfinUserId" gorm:"index"`
	JellyfinUsername  string `json:"jellyfinUsername"`
	JellyfinAuthToken string `json:"-"`
	JellyfinDeviceId  string `json:"-"`

	ResetPasswordGuid          string     `json:"-"`
	RecoveryLinkExpirationDate *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsLocalUser reports whether the user can sign in with an email/password pair.
func (u *User) IsLocalUser() bool {
	return u.Password != ""
}

// IsPlexUser reports whether the user is linked to a Plex account.
func (u *User) IsPlexUser() bool {
	return u.PlexId != 0
}

func (u *User) HasPermission(permission int) bool {
	if u.Permissions&PermissionAdmin != 0 {
		return true
	}
	return u.Permissions&permission != 0
}

// DisplayName prefers the explicit username, then the provider usernames,
// then the email address.
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.PlexUsername != "":
		return u.PlexUsername
	case u.JellyfinUsername != "":
		return u.JellyfinUsername
	}
	return u.Email
}
