// Package profileclient talks to the profile backend on behalf of the
// session container.
package profileclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ecsetu/portal/internal/core/domain"
)

const (
	profilePath    = "/api/profile"
	maxErrorBody   = 4 << 10
	defaultTimeout = 10 * time.Second
)

// UpdateError is returned when the backend answers a profile update with a
// non-success status.
type UpdateError struct {
	Status int
	Body   string
}

func (e *UpdateError) Error() string {
	return "backend update failed: " + e.Body
}

// Is lets errors.Is match domain.ErrProfileRejected.
func (e *UpdateError) Is(target error) bool {
	return target == domain.ErrProfileRejected
}

// Client implements ports.ProfileClient over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the backend at baseURL. A nil httpClient gets a
// default one with a request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Fetch issues GET /api/profile?id=<id>.
func (c *Client) Fetch(ctx context.Context, id string) (domain.UserPatch, error) {
	endpoint := c.baseURL + profilePath + "?" + url.Values{"id": {id}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UserPatch{}, fmt.Errorf("fetch profile: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.UserPatch{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.UserPatch{}, fmt.Errorf("fetch profile: %w (status %d)", domain.ErrProfileUnavailable, resp.StatusCode)
	}

	var patch domain.UserPatch
	if err := json.NewDecoder(resp.Body).Decode(&patch); err != nil {
		return domain.UserPatch{}, fmt.Errorf("fetch profile: decode: %w", err)
	}
	return patch, nil
}

// updateRequest is the PUT body: the supplied fields plus the identifier.
type updateRequest struct {
	domain.UserPatch
	ID string `json:"id"`
}

// Update issues PUT /api/profile.
func (c *Client) Update(ctx context.Context, id string, patch domain.UserPatch) error {
	body, err := json.Marshal(updateRequest{UserPatch: patch.WithoutID(), ID: id})
	if err != nil {
		return fmt.Errorf("update profile: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+profilePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpdateError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
