package api

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// TokenStore persists the bearer token to a file so a session survives a
// client restart. The in-memory copy is the source of truth after Load.
type TokenStore struct {
	path string

	mu    sync.Mutex
	token string
}

// NewTokenStore reads any previously saved token from path. A missing
// file means no session.
func NewTokenStore(path string) (*TokenStore, error) {
	ts := &TokenStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ts, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	ts.token = strings.TrimSpace(string(data))
	// A token accidentally stored with its scheme prefix would double up
	// in the Authorization header.
	ts.token = strings.TrimPrefix(ts.token, "Bearer ")
	return ts, nil
}

// Get returns the current token, or "" when logged out.
func (ts *TokenStore) Get() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}

// Set stores and persists a new token.
func (ts *TokenStore) Set(token string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")
	if err := os.WriteFile(ts.path, []byte(ts.token), 0600); err != nil {
		return fmt.Errorf("save token file: %w", err)
	}
	return nil
}

// Clear forgets the token and removes the file.
func (ts *TokenStore) Clear() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	if err := os.Remove(ts.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
