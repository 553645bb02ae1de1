package rosmsg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMessageNotFound is returned when a provider cannot resolve a message
// identity.
var ErrMessageNotFound = errors.New("message not found")

// ErrInvalidIdentity is returned for identities that are not of the form
// "package/msg/Name".
var ErrInvalidIdentity = errors.New("invalid message identity")

// Provider resolves namespaced message identities to definitions.
type Provider interface {
	Lookup(identity string) (*Message, error)
}

// SplitIdentity validates and splits a "package/msg/Name" identity.
func SplitIdentity(identity string) (pkg, name string, err error) {
	parts := strings.Split(identity, "/")
	if len(parts) != 3 || parts[1] != "msg" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}
	if strings.ContainsAny(identity, ".") {
		return "", "", fmt.Errorf("%w: %q contains periods", ErrInvalidIdentity, identity)
	}
	return parts[0], parts[2], nil
}

// Registry is an in-memory Provider, used by tests and by callers that
// already hold parsed definitions.
type Registry struct {
	messages map[string]*Message
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{messages: make(map[string]*Message)}
}

// Register adds a message definition, replacing any previous definition
// with the same identity.
func (r *Registry) Register(m *Message) {
	r.messages[m.Identity()] = m
}

// Lookup implements Provider.
func (r *Registry) Lookup(identity string) (*Message, error) {
	if _, _, err := SplitIdentity(identity); err != nil {
		return nil, err
	}
	m, ok := r.messages[identity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, identity)
	}
	return m, nil
}
