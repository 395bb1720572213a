/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scenewright/internal/config"
	"scenewright/internal/domain"
	"scenewright/internal/storage"
)

// Client talks to the project backend. Transport failures and non-2xx answers wrap domain.ErrTransport;
// 404 also wraps domain.ErrNotFound and 400 domain.ErrFormat.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
	maxBody int64
}

// NewClient creates a client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		maxBody: maxPayloadBytes,
	}
}

// NewClientFromConfig applies the configured timeout and TLS setting.
func NewClientFromConfig(cfg config.BackendConfig, token string) *Client {
	c := NewClient(cfg.BaseURL, token)
	c.client.Timeout = cfg.Timeout()
	if cfg.TLSInsecure {
		c.client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec
	}
	return c
}

// StatusError is a non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Status int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, e.Msg)
	}
	return fmt.Sprintf("server %s %s: %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() []error {
	errs := []error{domain.ErrTransport}
	switch e.Status {
	case http.StatusNotFound:
		errs = append(errs, domain.ErrNotFound)
	case http.StatusBadRequest:
		errs = append(errs, domain.ErrFormat)
	}
	return errs
}

// do sends body (marshalled unless it is []byte) and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", domain.ErrTransport, method, u.Path, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s %s: response exceeds %d bytes", domain.ErrTransport, method, u.Path, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return nil, &StatusError{Method: method, Path: u.Path, Status: resp.StatusCode, Msg: e.Error}
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrFormat, path, err)
	}
	return nil
}

// Login requests a token for subject and keeps it on the client.
func (c *Client) Login(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error) {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	req := map[string]any{"subject": subject, "ttl_seconds": int64(ttl / time.Second)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &resp); err != nil {
		return "", time.Time{}, err
	}
	c.Token = resp.Token
	return resp.Token, resp.ExpiresAt, nil
}

// Me returns the subject the server associates with the token.
func (c *Client) Me(ctx context.Context) (string, error) {
	var resp struct {
		Subject string `json:"subject"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return "", err
	}
	return resp.Subject, nil
}

// Create stores a new project and returns its id.
func (c *Client) Create(ctx context.Context, title string, payload []byte) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	req := map[string]any{"title": title, "payload": json.RawMessage(payload)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Update creates or replaces the project id.
func (c *Client) Update(ctx context.Context, id string, payload []byte) error {
	_, err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), payload)
	return err
}

// Get fetches a project document. Answers that are not a project document are format errors.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if err := storage.CheckPayload(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ListProjects returns the caller's projects, most recently updated first.
func (c *Client) ListProjects(ctx context.Context) ([]Summary, error) {
	var list []Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteProject removes the project id.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil)
	return err
}

// Save, Load, List and Delete let a Client serve as the editor's repository.

func (c *Client) Save(ctx context.Context, id string, payload []byte) error {
	return c.Update(ctx, id, payload)
}

func (c *Client) Load(ctx context.Context, id string) ([]byte, error) { return c.Get(ctx, id) }

func (c *Client) List(ctx context.Context) ([]storage.Summary, error) {
	list, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Summary, len(list))
	for i, p := range list {
		out[i] = storage.Summary{ID: p.ID, Title: p.Title, UpdatedAt: p.UpdatedAt}
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error { return c.DeleteProject(ctx, id) }

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}
