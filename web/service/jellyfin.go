package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/notfakie/jellyseerr/config"
)

// Default avatar served for accounts without a primary image.
const defaultJellyfinAvatar = "/os_logo_square.png"

// JellyfinAccount is the normalized identity returned by a Jellyfin or Emby
// server after AuthenticateByName.
type JellyfinAccount struct {
	Id              string
	Name            string
	ServerId        string
	PrimaryImageTag string
	AccessToken     string
}

type jellyfinAuthRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type jellyfinAuthResponse struct {
	User struct {
		Id              string `json:"Id"`
		Name            string `json:"Name"`
		ServerId        string `json:"ServerId"`
		PrimaryImageTag string `json:"PrimaryImageTag"`
	} `json:"User"`
	AccessToken string `json:"AccessToken"`
}

// JellyfinService authenticates against a self-hosted Jellyfin/Emby server.
type JellyfinService struct {
	client *http.Client
}

func (s *JellyfinService) httpClient() *http.Client {
	if s.client != nil {
		return s.client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// DeriveDeviceID returns the stable device identifier used for a username
// that has no stored device id yet, so repeated logins reuse the same device
// registration on the remote server.
func DeriveDeviceID(username string) string {
	return base64.StdEncoding.EncodeToString([]byte("BOT_jellyseerr_" + username))
}

// Login authenticates username/password against the server at hostname and
// returns the account identity together with the issued access token.
func (s *JellyfinService) Login(ctx context.Context, hostname, username, password, deviceID string) (*JellyfinAccount, error) {
	body, err := json.Marshal(jellyfinAuthRequest{Username: username, Pw: password})
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hostname+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Emby-Authorization", fmt.Sprintf(
		`MediaBrowser Client="Jellyseerr", Device="Jellyseerr", DeviceId=%q, Version=%q`,
		deviceID, config.GetVersion(),
	))

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, newAuthError(ErrKindUnauthorized, "Invalid username or password.")
	case resp.StatusCode != http.StatusOK:
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	authResp := &jellyfinAuthResponse{}
	if err := json.NewDecoder(resp.Body).Decode(authResp); err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	return &JellyfinAccount{
		Id:              authResp.User.Id,
		Name:            authResp.User.Name,
		ServerId:        authResp.User.ServerId,
		PrimaryImageTag: authResp.User.PrimaryImageTag,
		AccessToken:     authResp.AccessToken,
	}, nil
}

// AvatarURL builds the avatar URL for an account, falling back to the default
// asset when the account has no primary image.
func (s *JellyfinService) AvatarURL(host string, account *JellyfinAccount) string {
	if account.PrimaryImageTag == "" {
		return defaultJellyfinAvatar
	}
	return fmt.Sprintf("%s/Users/%s/Images/Primary/?tag=%s&quality=90", host, account.Id, account.PrimaryImageTag)
}
