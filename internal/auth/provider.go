package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// ProviderConfig points the login flow at an Auth0-compatible tenant.
type ProviderConfig struct {
	// Domain is the tenant host, e.g. "homestay.eu.auth0.com". A full URL
	// with scheme is accepted too.
	Domain       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Provider runs the OAuth2 authorization-code flow and reads the user's
// claims from the userinfo endpoint.
type Provider struct {
	baseURL     string
	clientID    string
	userInfoURL string
	oauthConfig *oauth2.Config
}

// NewProvider builds a Provider from cfg.
func NewProvider(cfg ProviderConfig) *Provider {
	base := BaseURL(cfg.Domain)
	return &Provider{
		baseURL:     base,
		clientID:    cfg.ClientID,
		userInfoURL: base + "/userinfo",
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/authorize",
				TokenURL: base + "/oauth/token",
			},
			Scopes:      []string{"openid", "profile", "email"},
			RedirectURL: cfg.CallbackURL,
		},
	}
}

// AuthorizationURL returns the URL the browser is redirected to for login.
func (p *Provider) AuthorizationURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and returns the userinfo claims.
func (p *Provider) Exchange(ctx context.Context, code string) (domain.IdentityClaims, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth.Provider.Exchange: %w", err)
	}

	resp, err := p.oauthConfig.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth.Provider.Exchange: fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth.Provider.Exchange: user info returned %d", resp.StatusCode)
	}

	var claims domain.IdentityClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("auth.Provider.Exchange: decoding user info: %w", err)
	}
	return claims, nil
}

// LogoutURL returns the provider's logout URL that redirects back to returnTo.
func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	return p.baseURL + "/v2/logout?" + q.Encode()
}

// BaseURL normalises a tenant domain to an https base URL without a trailing slash.
func BaseURL(domainOrURL string) string {
	d := strings.TrimRight(strings.TrimSpace(domainOrURL), "/")
	if strings.Contains(d, "://") {
		return d
	}
	return "https://" + d
}
