package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUserAccess(t *testing.T) {
	setup()
	defer teardown()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		require.Equal(t, "owner-token", r.Header.Get("X-Plex-Token"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<MediaContainer>
			<User id="99" username="friend" email="friend@x.com">
				<Server machineIdentifier="m1"/>
			</User>
			<User id="100" username="other" email="other@x.com">
				<Server machineIdentifier="m2"/>
			</User>
		</MediaContainer>`))
	}))
	defer ts.Close()

	settingService := SettingService{}
	require.NoError(t, settingService.SetPlexMachineID("m1"))

	plexService := PlexService{baseURL: ts.URL}
	ctx := context.Background()

	access, err := plexService.CheckUserAccess(ctx, "owner-token", 99)
	require.NoError(t, err)
	assert.True(t, access)

	// Shares a different server only.
	access, err = plexService.CheckUserAccess(ctx, "owner-token", 100)
	require.NoError(t, err)
	assert.False(t, access)

	// Not in the share list at all.
	access, err = plexService.CheckUserAccess(ctx, "owner-token", 7)
	require.NoError(t, err)
	assert.False(t, access)
}

func TestCheckUserAccessWithoutMachineID(t *testing.T) {
	setup()
	defer teardown()

	plexService := PlexService{baseURL: "http://127.0.0.1:0"}
	access, err := plexService.CheckUserAccess(context.Background(), "tok", 99)
	require.NoError(t, err)
	assert.False(t, access)
}

func TestGetUserInvalidToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	plexService := PlexService{baseURL: ts.URL}
	_, err := plexService.GetUser(context.Background(), "bad-token")
	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindUnauthorized, authErr.Kind)
}
