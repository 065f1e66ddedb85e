package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrObjectNotFound is returned by Get when no object exists under a key
var ErrObjectNotFound = errors.New("object not found")

// Storage interface for object storage operations
type Storage interface {
	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data io.Reader) error

	// Get retrieves the object stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType `yaml:"type"`
	LocalPath    string      `yaml:"local_path"` // For local storage
	S3Bucket     string      `yaml:"s3_bucket"`  // For S3 storage
	S3Region     string      `yaml:"s3_region"`  // For S3 storage
	AWSAccessKey string      `yaml:"-"`
	AWSSecretKey string      `yaml:"-"`
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		localPath := cfg.LocalPath
		if localPath == "" {
			localPath = "./storage/files"
		}
		return NewLocalStorage(localPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("an S3 bucket is required for S3 storage")
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// cleanKey normalizes an object key and rejects keys escaping the root
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return cleaned, nil
}

// contentType determines content type from key
func contentType(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
