package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Login posts credentials as a multipart form (the backend's OAuth2
// password flow) and installs the returned token into the session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("username", username); err != nil {
		return nil, err
	}
	if err := w.WriteField("password", password); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}
	if c.Session != nil {
		c.Session.Init(out.AccessToken, username)
	}
	return &out, nil
}

// Logout tells the backend to drop the token and clears the session either
// way; a failed logout call must not leave credentials behind.
func (c *Client) Logout(ctx context.Context) error {
	err := c.sendJSON(ctx, http.MethodPost, "/auth/logout/", nil, nil)
	if c.Session != nil {
		c.Session.Clear()
	}
	return err
}

type Me struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (c *Client) Me(ctx context.Context) (*Me, error) {
	var out Me
	if err := c.get(ctx, "/auth/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
