// Package storage abstracts the volatile key/value store backing
// session secrets. Production uses Redis; -dev runs on an in-memory
// implementation so no external services are required.
package storage

import "context"

// SessionSecretStore holds the per-session HMAC secrets used by the
// request-signing middleware. Secrets are written by the auth
// collaborator (or the -dev login helper) and read on every request.
type SessionSecretStore interface {
	SetSessionSecret(ctx context.Context, sessionID, secret string) error
	GetSessionSecret(ctx context.Context, sessionID string) (string, error)
	DeleteSessionSecret(ctx context.Context, sessionID string) error
	Close() error
}
