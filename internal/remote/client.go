// Package remote talks to the task store server: session management,
// row CRUD over the wire schema, and the realtime change feed.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Session holds the saved server session
type Session struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
}

// Client is the server client
type Client struct {
	session     *Session
	sessionPath string
	httpClient  *http.Client
}

// NewClient creates a new client, loading any saved session from
// ~/.focal/sync.json
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewClientAt(filepath.Join(home, ".focal", "sync.json"))
}

// NewClientAt creates a client with an explicit session file path
func NewClientAt(sessionPath string) (*Client, error) {
	c := &Client{
		sessionPath: sessionPath,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	c.loadSession()
	return c, nil
}

func (c *Client) loadSession() {
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		c.session = &Session{
			ServerURL: "http://localhost:8080",
		}
		return
	}

	c.session = &Session{}
	_ = json.Unmarshal(data, c.session)
	if c.session.ServerURL == "" {
		c.session.ServerURL = "http://localhost:8080"
	}
}

func (c *Client) saveSession() error {
	dir := filepath.Dir(c.sessionPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.sessionPath, data, 0600)
}

// SetServer sets the server URL
func (c *Client) SetServer(url string) error {
	c.session.ServerURL = url
	return c.saveSession()
}

// ServerURL returns the configured server URL
func (c *Client) ServerURL() string {
	return c.session.ServerURL
}

// UserID returns the logged-in user id, empty when logged out
func (c *Client) UserID() string {
	return c.session.UserID
}

// IsLoggedIn returns true if a session token is present
func (c *Client) IsLoggedIn() bool {
	return c.session.Token != ""
}

// Register creates a new account
func (c *Client) Register(username, email, password string) error {
	return c.authenticate("/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login authenticates with username and password
func (c *Client) Login(username, password string) error {
	return c.authenticate("/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *Client) authenticate(path string, creds map[string]string) error {
	body, _ := json.Marshal(creds)

	resp, err := c.httpClient.Post(
		c.session.ServerURL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth failed: %s", string(respBody))
	}

	var result struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	c.session.Token = result.Token
	c.session.UserID = result.UserID
	return c.saveSession()
}

// Logout clears the session
func (c *Client) Logout() error {
	c.session.Token = ""
	c.session.UserID = ""
	return c.saveSession()
}

// Ping probes the server health endpoint. Used by the connectivity
// monitor; does not require a session.
func (c *Client) Ping() bool {
	resp, err := c.httpClient.Get(c.session.ServerURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}
