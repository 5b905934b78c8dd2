package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	var resp struct {
		AccessToken    string `json:"accessToken"`
		AccessTokenSn  string `json:"access_token"`
		RefreshToken   string `json:"refreshToken"`
		RefreshTokenSn string `json:"refresh_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp, reqOpts{}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	access := firstString(resp.AccessToken, resp.AccessTokenSn)
	refresh := firstString(resp.RefreshToken, resp.RefreshTokenSn)
	if access == "" {
		return fmt.Errorf("login: response carried no access token")
	}
	if c.tokens == nil {
		return fmt.Errorf("login: no token store configured")
	}
	if err := c.tokens.Set(access, refresh); err != nil {
		return fmt.Errorf("login: store tokens: %w", err)
	}
	return nil
}

// Logout invalidates the session server-side when possible and always
// clears the local tokens.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, map[string]any{}, nil, reqOpts{})
	if c.tokens != nil {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			return fmt.Errorf("logout: clear tokens: %w", clearErr)
		}
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Profile is the authenticated user's identity.
type Profile struct {
	ID    int64
	Email string
	Name  string
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var resp struct {
		ID       FlexInt `json:"id"`
		Email    string  `json:"email"`
		Name     string  `json:"name"`
		Nickname string  `json:"nickname"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &Profile{
		ID:    int64(resp.ID),
		Email: strings.TrimSpace(resp.Email),
		Name:  firstString(resp.Name, resp.Nickname),
	}, nil
}
