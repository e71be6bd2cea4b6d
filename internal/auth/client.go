package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"example.com/streakly/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrAuthFailed   = errors.New("authentication failed")
)

// Session is what the hosted provider hands back on sign-up/sign-in.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

// Client talks to the hosted auth provider (GoTrue-style endpoints). The
// provider owns credentials and session lifetime; this side only relays.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	return c.credentials(ctx, "/auth/v1/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	return c.credentials(ctx, "/auth/v1/token?grant_type=password", email, password)
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("auth http status: %s", resp.Status)
	}
	return nil
}

func (c *Client) credentials(ctx context.Context, path, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Message string `json:"msg"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return Session{}, fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Message)
		}
		return Session{}, fmt.Errorf("%w: %s", ErrAuthFailed, resp.Status)
	}
	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Session{}, err
	}
	if s.AccessToken == "" || s.User.ID == "" {
		return Session{}, ErrAuthFailed
	}
	return s, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	return req, nil
}

// UserFromToken extracts the current user from a provider-issued JWT. The
// signature is the provider's to verify; here only the claims shape and
// expiry are checked before the id gates any repository call.
func UserFromToken(token string) (domain.User, error) {
	parser := jwt.NewParser()
	claims := struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return domain.User{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return domain.User{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.User{}, ErrInvalidToken
	}
	return domain.User{ID: claims.Subject, Email: claims.Email}, nil
}
