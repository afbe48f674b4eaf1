package service

import (
	"testing"

	"github.com/notfakie/jellyseerr/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingDefaults(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	port, err := settingService.GetPort()
	require.NoError(t, err)
	assert.Equal(t, 5055, port)

	localLogin, err := settingService.GetLocalLogin()
	require.NoError(t, err)
	assert.True(t, localLogin)

	permissions, err := settingService.GetDefaultPermissions()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionRequest, permissions)

	host, err := settingService.GetJellyfinHost()
	require.NoError(t, err)
	assert.Empty(t, host)

	secret, err := settingService.GetSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}

func TestGetSecretPersistsAcrossReads(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	secret, err := settingService.GetSecret()
	require.NoError(t, err)
	require.Len(t, secret, 32)

	// The first read stores the generated secret so a restart keeps signing
	// session cookies with the same key.
	stored, err := settingService.getSetting("secret")
	require.NoError(t, err)
	assert.Equal(t, secret, stored.Value)

	again, err := settingService.GetSecret()
	require.NoError(t, err)
	assert.Equal(t, secret, again)
}

func TestSettingRoundTrip(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	require.NoError(t, settingService.SetJellyfinHost("http://media.local/"))
	host, err := settingService.GetJellyfinHost()
	require.NoError(t, err)
	assert.Equal(t, "http://media.local", host)

	require.NoError(t, settingService.SetNewPlexLogin(false))
	newLogin, err := settingService.GetNewPlexLogin()
	require.NoError(t, err)
	assert.False(t, newLogin)

	require.NoError(t, settingService.SetDefaultPermissions(model.PermissionRequest|model.PermissionManageRequests))
	permissions, err := settingService.GetDefaultPermissions()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionRequest|model.PermissionManageRequests, permissions)
}

func TestResetSettings(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}
	require.NoError(t, settingService.SetJellyfinHost("http://media.local"))
	require.NoError(t, settingService.ResetSettings())

	host, err := settingService.GetJellyfinHost()
	require.NoError(t, err)
	assert.Empty(t, host)
}

func TestGetBasePathNormalization(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}
	require.NoError(t, settingService.setString("webBasePath", "requests"))

	basePath, err := settingService.GetBasePath()
	require.NoError(t, err)
	assert.Equal(t, "/requests/", basePath)
}
