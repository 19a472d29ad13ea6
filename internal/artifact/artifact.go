// Package artifact stores per-session blobs: uploaded source documents,
// extracted outline JSON, and synthesized podcast audio. Keys are
// slash-separated paths scoped to a session, e.g. "current/report.pdf" or
// "outlines/report.json".
package artifact

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound means no artifact exists under the requested key.
var ErrNotFound = errors.New("artifact not found")

// Store is a session-scoped blob store.
type Store interface {
	// Put writes an artifact, replacing any existing one under the key.
	Put(ctx context.Context, sessionID, key string, r io.Reader) error
	// Get opens an artifact for reading. The caller closes the reader.
	Get(ctx context.Context, sessionID, key string) (io.ReadCloser, error)
	// List returns the keys under the given prefix, in lexical order.
	List(ctx context.Context, sessionID, prefix string) ([]string, error)
	// Delete removes one artifact. Deleting a missing key is not an error.
	Delete(ctx context.Context, sessionID, key string) error
	// DeleteSession removes every artifact belonging to the session.
	DeleteSession(ctx context.Context, sessionID string) error
}

// validKey rejects keys that could escape the session scope.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return errors.New("invalid artifact key")
	}
	return nil
}
