package lightcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"skill-map/internal/config"
	"skill-map/internal/httpx"
)

type Client struct {
	SkillsURL string
	HTTP      *http.Client
	Auth      clientcredentials.Config
}

func New(cfg config.Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		SkillsURL: cfg.LightcastSkillsURL,
		HTTP:      &http.Client{Timeout: timeout},
		Auth: clientcredentials.Config{
			ClientID:     cfg.LightcastClientID,
			ClientSecret: cfg.LightcastClientSecret,
			TokenURL:     cfg.LightcastTokenURL,
			Scopes:       []string{cfg.LightcastScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}
}

// Token performs one client-credentials exchange. Callers hold the token for a
// whole pass; it is never refreshed.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.Auth.ClientID == "" || c.Auth.ClientSecret == "" {
		return "", errors.New("lightcast: missing env LIGHTCAST_CLIENT_ID / LIGHTCAST_CLIENT_SECRET")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTP)
	tok, err := c.Auth.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("lightcast: token exchange failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("lightcast: token not found")
	}
	return tok.AccessToken, nil
}

// SearchSkill returns the best match for q, or nil when the search is empty.
func (c *Client) SearchSkill(ctx context.Context, token, q string) (*Skill, error) {
	u, err := url.Parse(c.SkillsURL)
	if err != nil {
		return nil, fmt.Errorf("lightcast: invalid skills url: %w", err)
	}
	params := u.Query()
	params.Set("q", q)
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	var out searchResponse
	err = httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return nil, err
			}
			r.Header.Set("Accept", "application/json")
			r.Header.Set("Authorization", "Bearer "+token)
			return r, nil
		},
		&out,
	)
	if err != nil {
		return nil, fmt.Errorf("lightcast: search %q failed: %w", q, err)
	}

	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}
