// Package blob re-exports the object storage abstractions and selects a
// driver from configuration.
package blob

import (
	"context"
	"fmt"
	"mockbase/internal/blob/core"
	"mockbase/internal/infra/blob/fs"
	memorystore "mockbase/internal/infra/blob/memory"
	nullstore "mockbase/internal/infra/blob/null"
	infraS3 "mockbase/internal/infra/blob/s3"
	"strings"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
	// S3Config configures the S3 driver.
	S3Config = infraS3.Config
)

const (
	// DriverNull acknowledges writes without storing them.
	DriverNull = core.DriverNull
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
)

var (
	// ErrUnsupported indicates an operation isn't supported by a driver.
	ErrUnsupported = core.ErrUnsupported
	// ErrNotFound indicates a missing object.
	ErrNotFound = core.ErrNotFound
	// ErrExists indicates a create-only write hit an existing object.
	ErrExists = core.ErrExists
)

// Options selects and configures a driver.
type Options struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open builds the Store named by opts.Driver (default null).
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(string(opts.Driver))))
	if driver == "" {
		driver = DriverNull
	}
	switch driver {
	case DriverNull:
		return NewNull(), nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}

// NewNull returns a store that keeps nothing.
func NewNull() Store { return nullstore.New() }

// NewMemory returns an in-memory store.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem returns a filesystem store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewS3 returns an S3-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return infraS3.New(ctx, cfg) }
