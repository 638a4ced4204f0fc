// Package local implements storage.Client on the local filesystem. Each
// bucket is a directory under the configured root; object keys map to file
// paths inside it.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuluo11/CET-Smart-Learn/internal/storage"
)

// Client implements storage.Client for the local filesystem.
type Client struct {
	root          string
	publicBaseURL string
}

// NewClient creates a filesystem storage client rooted at dir. Public URLs
// are formed as publicBaseURL/bucket/key.
func NewClient(dir, publicBaseURL string) (*Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Client{
		root:          dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (c *Client) objectPath(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", errors.New("bucket and key must be non-empty")
	}
	path := filepath.Join(c.root, bucket, filepath.FromSlash(key))
	// Reject keys that escape the bucket directory.
	bucketDir := filepath.Join(c.root, bucket)
	if !strings.HasPrefix(path, bucketDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return path, nil
}

func (c *Client) Upload(ctx context.Context, bucket, key string, content io.Reader, contentType string) error {
	path, err := c.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so overwrites are atomic.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store object: %w", err)
	}

	// Content type is recorded alongside the object so downloads can serve
	// the right header.
	if contentType != "" {
		if err := os.WriteFile(path+".meta", []byte(contentType), 0o644); err != nil {
			return fmt.Errorf("failed to store object metadata: %w", err)
		}
	}

	return nil
}

func (c *Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := c.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return nil, err
	}
	return f, nil
}

func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	path, err := c.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(path + ".meta"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	path, err := c.objectPath(bucket, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) GetMetadata(ctx context.Context, bucket, key string) (*storage.ObjectInfo, error) {
	path, err := c.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return nil, err
	}

	contentType := ""
	if meta, err := os.ReadFile(path + ".meta"); err == nil {
		contentType = string(meta)
	}

	return &storage.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		ModifiedAt:  info.ModTime(),
	}, nil
}

func (c *Client) PublicURL(bucket, key string) string {
	return c.publicBaseURL + "/" + bucket + "/" + key
}
