package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// ManagementConfig holds the machine-to-machine credentials for the identity
// provider's management API.
type ManagementConfig struct {
	Domain         string
	ClientID       string
	ClientSecret   string
	LandlordRoleID string
}

// Management calls the identity provider's management API with a
// client-credentials token.
type Management struct {
	baseURL        string
	landlordRoleID string
	client         *http.Client
}

// NewManagement builds a Management client. Tokens are fetched lazily and
// cached by the underlying oauth2 transport until they expire.
func NewManagement(ctx context.Context, cfg ManagementConfig) *Management {
	base := BaseURL(cfg.Domain)
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/oauth/token",
		EndpointParams: url.Values{
			"audience": {base + "/api/v2/"},
		},
	}
	return &Management{
		baseURL:        base,
		landlordRoleID: cfg.LandlordRoleID,
		client:         cc.Client(ctx),
	}
}

type idpUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AddLandlordRole assigns the landlord role to the provider account with the
// user's email. Returns domain.ErrNotFound if the provider has no such account.
func (m *Management) AddLandlordRole(ctx context.Context, u domain.User) error {
	userID, err := m.userIDByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("auth.Management.AddLandlordRole: %w", err)
	}

	body, err := json.Marshal(map[string][]string{"roles": {m.landlordRoleID}})
	if err != nil {
		return fmt.Errorf("auth.Management.AddLandlordRole: %w", err)
	}

	endpoint := m.baseURL + "/api/v2/users/" + url.PathEscape(userID) + "/roles"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("auth.Management.AddLandlordRole: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth.Management.AddLandlordRole: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("auth.Management.AddLandlordRole: assign role returned %d", resp.StatusCode)
	}
	return nil
}

func (m *Management) userIDByEmail(ctx context.Context, email string) (string, error) {
	endpoint := m.baseURL + "/api/v2/users-by-email?" + url.Values{"email": {email}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("users-by-email returned %d", resp.StatusCode)
	}

	var users []idpUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decoding users: %w", err)
	}
	if len(users) == 0 {
		return "", fmt.Errorf("%w: no identity provider account for %s", domain.ErrNotFound, email)
	}
	return users[0].UserID, nil
}
