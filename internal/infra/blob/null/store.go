// Package null implements a blob store that acknowledges every write and
// removal without keeping any bytes, the behaviour of the mock storage surface.
package null

import (
	"context"
	"fmt"
	"io"
	"mockbase/internal/blob/core"
	"time"
)

// Store discards uploads. It keeps no state, so it is safe for concurrent use.
type Store struct {
	nowFn func() time.Time
}

// New returns a null blob store.
func New() *Store {
	return &Store{nowFn: func() time.Time { return time.Now().UTC() }}
}

// Driver returns the blob driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverNull }

// Put drains r and reports the object as stored.
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return core.Info{}, fmt.Errorf("read %s: %w", key, err)
	}
	return core.Info{
		Key:          key,
		Size:         n,
		ContentType:  opts.ContentType,
		Metadata:     core.CloneMetadata(opts.Metadata),
		LastModified: s.nowFn(),
	}, nil
}

// Get always fails: nothing is kept.
func (s *Store) Get(_ context.Context, key string) (core.Info, io.ReadCloser, error) {
	return core.Info{}, nil, fmt.Errorf("%s: %w", key, core.ErrNotFound)
}

// Head always fails: nothing is kept.
func (s *Store) Head(_ context.Context, key string) (core.Info, error) {
	return core.Info{}, fmt.Errorf("%s: %w", key, core.ErrNotFound)
}

// Delete acknowledges the removal.
func (s *Store) Delete(context.Context, string) (bool, error) { return true, nil }

// List is always empty.
func (s *Store) List(context.Context, string) ([]core.Info, error) { return []core.Info{}, nil }

// PresignURL is unsupported.
func (s *Store) PresignURL(context.Context, string, core.SignedURLOptions) (string, error) {
	return "", core.ErrUnsupported
}
