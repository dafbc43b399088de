package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// State travels through the provider and back to the callback.
type State struct {
	CameFrom string `json:"came_from,omitempty"`
}

type encodedState struct {
	State
	Nonce string `json:"nonce"`
}

func (s *State) Encode(nonce string) (string, error) {
	data, err := json.Marshal(encodedState{State: *s, Nonce: nonce})
	if err != nil {
		return "", fmt.Errorf("error encoding state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseState decodes a state parameter into the state and its nonce.
func ParseState(param string) (*State, string, error) {
	if param == "" {
		return nil, "", errors.New("missing state")
	}
	data, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		return nil, "", fmt.Errorf("error decoding state: %w", err)
	}
	decoded := encodedState{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, "", fmt.Errorf("error decoding state: %w", err)
	}
	if decoded.Nonce == "" {
		return nil, "", errors.New("state has no nonce")
	}
	return &decoded.State, decoded.Nonce, nil
}

func NewNonce() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// LocalPath returns path if it names a page on this server, and "/"
// otherwise.
func LocalPath(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}
