package service

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/notfakie/jellyseerr/config"
)

const plexTvBaseURL = "https://plex.tv"

// PlexAccount is the normalized identity returned by plex.tv for a token.
type PlexAccount struct {
	Id       int64  `json:"id"`
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Thumb    string `json:"thumb"`
}

// PlexSharedUser is an entry of the owner's shared-server user list.
type PlexSharedUser struct {
	Id       int64            `xml:"id,attr"`
	Username string           `xml:"username,attr"`
	Email    string           `xml:"email,attr"`
	Thumb    string           `xml:"thumb,attr"`
	Servers  []PlexUserServer `xml:"Server"`
}

// PlexUserServer is a server a shared user has access to.
type PlexUserServer struct {
	MachineIdentifier string `xml:"machineIdentifier,attr"`
}

type plexUsersResponse struct {
	XMLName xml.Name         `xml:"MediaContainer"`
	Users   []PlexSharedUser `xml:"User"`
}

// PlexService talks to the plex.tv account API. The zero value uses the
// public endpoint with a 10 second timeout; baseURL and client are
// overridable for tests.
type PlexService struct {
	settingService SettingService

	baseURL string
	client  *http.Client
}

func (s *PlexService) endpoint(path string) string {
	base := s.baseURL
	if base == "" {
		base = plexTvBaseURL
	}
	return base + path
}

func (s *PlexService) httpClient() *http.Client {
	if s.client != nil {
		return s.client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (s *PlexService) newRequest(ctx context.Context, method, path, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Plex-Token", token)
	req.Header.Set("X-Plex-Client-Identifier", config.GetName())
	req.Header.Set("X-Plex-Product", config.GetName())
	req.Header.Set("X-Plex-Version", config.GetVersion())
	return req, nil
}

// GetUser resolves a Plex auth token to the owning account.
func (s *PlexService) GetUser(ctx context.Context, authToken string) (*PlexAccount, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/api/v2/user", authToken)
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, newAuthError(ErrKindUnauthorized, "Invalid Plex token.")
	case resp.StatusCode != http.StatusOK:
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	account := &PlexAccount{}
	if err := json.NewDecoder(resp.Body).Decode(account); err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	return account, nil
}

// GetUsers lists the accounts the token owner shares servers with. plex.tv
// serves this endpoint as XML only.
func (s *PlexService) GetUsers(ctx context.Context, authToken string) ([]PlexSharedUser, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/api/users", authToken)
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, newAuthError(ErrKindUnauthorized, "Invalid Plex token.")
	case resp.StatusCode != http.StatusOK:
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}

	container := &plexUsersResponse{}
	if err := xml.NewDecoder(resp.Body).Decode(container); err != nil {
		return nil, newAuthError(ErrKindInternal, MsgInternalError)
	}
	return container.Users, nil
}

// CheckUserAccess reports whether accountID has access to the configured
// server through the token owner's share list. The owner account itself never
// appears in the list; callers handle the owner by id equality beforehand.
func (s *PlexService) CheckUserAccess(ctx context.Context, authToken string, accountID int64) (bool, error) {
	machineID, err := s.settingService.GetPlexMachineID()
	if err != nil {
		return false, err
	}
	if machineID == "" {
		return false, nil
	}

	users, err := s.GetUsers(ctx, authToken)
	if err != nil {
		return false, err
	}

	for _, user := range users {
		if user.Id != accountID {
			continue
		}
		for _, server := range user.Servers {
			if server.MachineIdentifier == machineID {
				return true, nil
			}
		}
	}
	return false, nil
}
