// Package directory implements the session and membership collaborators
// against the main application's internal API.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
)

const secretHeader = "X-Directory-Secret"

type Client struct {
	base   string
	secret string
	http   *http.Client
}

func NewClient(base, secret string) *Client {
	return &Client{
		base:   base,
		secret: secret,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

type sessionResponse struct {
	SessionID string    `json:"sessionId"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *Client) Verify(ctx context.Context, token string) (*core.Session, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/internal/auth/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.decodeSession(resp)
}

func (c *Client) GetSession(ctx context.Context, id string) (*core.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/internal/sessions/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.decodeSession(resp)
}

func (c *Client) decodeSession(resp *http.Response) (*core.Session, error) {
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, core.ErrSessionInvalid
	default:
		return nil, fmt.Errorf("directory: unexpected status %d", resp.StatusCode)
	}
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("directory: decode session: %w", err)
	}
	if !sr.ExpiresAt.IsZero() && sr.ExpiresAt.Before(time.Now()) {
		return nil, core.ErrSessionInvalid
	}
	return &core.Session{ID: sr.SessionID, UserID: domain.UserID(sr.UserID), ExpiresAt: sr.ExpiresAt}, nil
}

func (c *Client) Membership(ctx context.Context, org domain.OrgID, user domain.UserID) (*core.Membership, error) {
	url := fmt.Sprintf("%s/internal/organisations/%d/members/%d", c.base, org, user)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("directory: unexpected status %d", resp.StatusCode)
	}
	var m core.Membership
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("directory: decode membership: %w", err)
	}
	return &m, nil
}
