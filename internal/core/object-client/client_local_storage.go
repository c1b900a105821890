package objectclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/markdave123-py/Deskmate/internal/core"
)

var _ core.ObjectClient = (*LocalClient)(nil)

// LocalClient stages files under a directory on the local disk.
type LocalClient struct {
	root string
}

func NewLocalClient(root string) (*LocalClient, error) {
	if root == "" {
		root = os.TempDir()
	}
	root = filepath.Join(root, "deskmate")
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &LocalClient{root: root}, nil
}

func (c *LocalClient) UploadFile(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := c.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return "file://" + p, nil
}

func (c *LocalClient) DeleteFile(_ context.Context, key string) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// path keeps keys inside root.
func (c *LocalClient) path(key string) (string, error) {
	p := filepath.Join(c.root, filepath.FromSlash(key))
	if p != c.root && !strings.HasPrefix(p, c.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid staging key %q", key)
	}
	return p, nil
}
