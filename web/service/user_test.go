package service

import (
	"testing"
	"time"

	"github.com/notfakie/jellyseerr/database/model"
	"github.com/notfakie/jellyseerr/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLocalUser(t *testing.T, email, password string, permissions int) *model.User {
	t.Helper()
	hashed, err := crypto.HashPasswordAsBcrypt(password)
	require.NoError(t, err)

	userService := UserService{}
	user := &model.User{
		Email:       email,
		Password:    hashed,
		Permissions: permissions,
		Avatar:      GravatarURL(email),
	}
	require.NoError(t, userService.CreateUser(user))
	return user
}

func TestCheckUser(t *testing.T) {
	setup()
	defer teardown()

	createLocalUser(t, "a@x.com", "swordfish", model.PermissionAdmin)

	userService := UserService{}
	assert.NotNil(t, userService.CheckUser("a@x.com", "swordfish"))
	assert.NotNil(t, userService.CheckUser("A@X.COM", "swordfish"))
	assert.Nil(t, userService.CheckUser("a@x.com", "wrong"))
	assert.Nil(t, userService.CheckUser("missing@x.com", "swordfish"))
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	assert.NoError(t, userService.RequestPasswordReset("missing@x.com"))
}

func TestResetPasswordFlow(t *testing.T) {
	setup()
	defer teardown()

	user := createLocalUser(t, "a@x.com", "swordfish", model.PermissionAdmin)

	var notifiedLink string
	userService := UserService{
		notifyReset: func(u *model.User, link string) {
			notifiedLink = link
		},
	}

	require.NoError(t, userService.RequestPasswordReset("a@x.com"))

	stored, err := userService.GetUserByID(user.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotEmpty(t, stored.ResetPasswordGuid)
	require.NotNil(t, stored.RecoveryLinkExpirationDate)
	assert.Contains(t, notifiedLink, stored.ResetPasswordGuid)

	// Too-short passwords are rejected before any token lookup.
	err = userService.ResetPassword(stored.ResetPasswordGuid, "short")
	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindValidation, authErr.Kind)

	// An unknown guid and an expired one yield the same message.
	err = userService.ResetPassword("no-such-guid", "longenough")
	authErr, ok = AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidResetLink, authErr.Message)

	require.NoError(t, userService.ResetPassword(stored.ResetPasswordGuid, "new-password"))
	assert.NotNil(t, userService.CheckUser("a@x.com", "new-password"))
	assert.Nil(t, userService.CheckUser("a@x.com", "swordfish"))

	// Consumption clears the expiration, so the guid cannot be replayed.
	consumed, err := userService.GetUserByID(user.Id)
	require.NoError(t, err)
	assert.Nil(t, consumed.RecoveryLinkExpirationDate)

	err = userService.ResetPassword(stored.ResetPasswordGuid, "another-pass")
	authErr, ok = AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidResetLink, authErr.Message)
}

func TestResetPasswordExpiredLink(t *testing.T) {
	setup()
	defer teardown()

	user := createLocalUser(t, "a@x.com", "swordfish", model.PermissionAdmin)

	userService := UserService{}
	expired := time.Now().Add(-time.Hour)
	user.ResetPasswordGuid = "expired-guid"
	user.RecoveryLinkExpirationDate = &expired
	require.NoError(t, userService.SaveUser(user))

	err := userService.ResetPassword("expired-guid", "longenough")
	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindValidation, authErr.Kind)
	assert.Equal(t, MsgInvalidResetLink, authErr.Message)
}

func TestClearExpiredRecoveryLinks(t *testing.T) {
	setup()
	defer teardown()

	expiredUser := createLocalUser(t, "a@x.com", "swordfish", model.PermissionAdmin)
	freshUser := createLocalUser(t, "b@x.com", "swordfish", model.PermissionRequest)

	userService := UserService{}
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expiredUser.ResetPasswordGuid = "old"
	expiredUser.RecoveryLinkExpirationDate = &past
	require.NoError(t, userService.SaveUser(expiredUser))

	freshUser.ResetPasswordGuid = "new"
	freshUser.RecoveryLinkExpirationDate = &future
	require.NoError(t, userService.SaveUser(freshUser))

	require.NoError(t, userService.ClearExpiredRecoveryLinks())

	cleared, _ := userService.GetUserByID(expiredUser.Id)
	assert.Empty(t, cleared.ResetPasswordGuid)
	assert.Nil(t, cleared.RecoveryLinkExpirationDate)

	kept, _ := userService.GetUserByID(freshUser.Id)
	assert.Equal(t, "new", kept.ResetPasswordGuid)
	assert.NotNil(t, kept.RecoveryLinkExpirationDate)
}

func TestGetAdminUser(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	admin, err := userService.GetAdminUser()
	require.NoError(t, err)
	assert.Nil(t, admin)

	first := createLocalUser(t, "a@x.com", "swordfish", model.PermissionAdmin)
	createLocalUser(t, "b@x.com", "swordfish", model.PermissionRequest)

	admin, err = userService.GetAdminUser()
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, first.Id, admin.Id)
}
