package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".makerspace_token"
)

// APIURL returns the base URL for the makerspace access API.
// It can be overridden with the MAKERSPACE_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("MAKERSPACE_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

// SaveToken stores the JWT token in the user's home directory for later CLI calls.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

// ReadToken loads the stored JWT token.
func ReadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("no stored token, run 'login' first: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DeleteToken removes the stored token.
func DeleteToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
