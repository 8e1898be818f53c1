package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// OAuthConfig describes one authorization-code identity provider.
type OAuthConfig struct {
	Provider     string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// Profile is the provider-reported identity used to upsert the local user.
type Profile struct {
	Subject     string
	DisplayName string
	Email       string
	AvatarURL   string
}

// OAuthClient runs the authorization-code exchange against one provider.
type OAuthClient struct {
	cfg  OAuthConfig
	http *http.Client
}

// NewOAuthClient creates an OAuthClient for the given provider config.
func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	return &OAuthClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider returns the configured provider name.
func (c *OAuthClient) Provider() string { return c.cfg.Provider }

// AuthCodeURL builds the provider authorization URL for the given state.
func (c *OAuthClient) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.cfg.ClientID)
	params.Set("redirect_uri", c.cfg.RedirectURL)
	params.Set("state", state)
	if len(c.cfg.Scopes) > 0 {
		params.Set("scope", strings.Join(c.cfg.Scopes, " "))
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

// Exchange swaps an authorization code for an access token.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("auth: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("auth: read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("auth: token exchange failed: %w: HTTP %d", domain.ErrUnauthorized, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("auth: decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("auth: token exchange returned no access token: %w", domain.ErrUnauthorized)
	}
	return tokenResp.AccessToken, nil
}

// FetchProfile retrieves the identity behind the access token.
func (c *OAuthClient) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: read userinfo response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Profile{}, fmt.Errorf("auth: userinfo failed: %w: HTTP %d", domain.ErrUnauthorized, resp.StatusCode)
	}

	// Field names vary across providers; try the common aliases.
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Profile{}, fmt.Errorf("auth: decode userinfo: %w", err)
	}

	profile := Profile{
		Subject:     firstString(raw, "sub", "id", "user_id"),
		DisplayName: firstString(raw, "name", "display_name", "login", "username"),
		Email:       firstString(raw, "email"),
		AvatarURL:   firstString(raw, "picture", "avatar_url"),
	}
	if profile.Subject == "" {
		return Profile{}, fmt.Errorf("auth: userinfo carries no subject: %w", domain.ErrUnauthorized)
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Subject
	}
	return profile, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
