// Package blob stores uploaded spreadsheets and exported workbooks.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores blobs as plain files under a root directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores blobs in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps blobs in process memory.
	DriverMemory Driver = "memory"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob: not found")

// ErrExists is returned by Put when a key is already taken.
var ErrExists = errors.New("blob: already exists")

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // small, flat key-value
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Location     string            `json:"location,omitempty"`
}

// Store is the storage surface used for uploads and exports.
type Store interface {
	// Put creates key; it fails with ErrExists rather than overwrite.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// Config selects and configures a Store.
type Config struct {
	Driver Driver
	// Root is the directory used by the filesystem driver.
	Root string
	S3   S3Config
}

// ConfigFromEnv reads a Config using prefix, e.g. "WEEKTABLE_BLOB":
//
//	<prefix>_DRIVER: fs|s3|memory (default fs)
//	<prefix>_FS_ROOT: directory root when driver=fs
//	<prefix>_S3_BUCKET, _S3_REGION, _S3_ENDPOINT, _S3_PATH_STYLE
func ConfigFromEnv(prefix string) Config {
	return Config{
		Driver: Driver(os.Getenv(prefix + "_DRIVER")),
		Root:   os.Getenv(prefix + "_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv(prefix + "_S3_BUCKET"),
			Region:    os.Getenv(prefix + "_S3_REGION"),
			Endpoint:  os.Getenv(prefix + "_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv(prefix+"_S3_PATH_STYLE"), "true"),
		},
	}
}

// Open returns the Store selected by cfg. An empty driver means filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
