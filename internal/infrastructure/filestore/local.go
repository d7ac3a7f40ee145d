// Package filestore saves uploaded product images on the local disk.
package filestore

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/google/uuid"
)

var (
	ErrNotImage = apperr.Validation("image: only image uploads are accepted")
	ErrEmpty    = apperr.Validation("image: file is empty")

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Local stores files under root/products and serves them back as /products/<name>.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	dir := filepath.Join(root, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Root() string { return l.root }

// Save writes data as <uuid>-<name> and returns the public reference path.
func (l *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	file := uuid.NewString() + "-" + sanitize(name)
	if err := os.WriteFile(filepath.Join(l.root, "products", file), data, 0o644); err != nil {
		return "", fmt.Errorf("filestore: write %s: %w", file, err)
	}
	return "/products/" + file, nil
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "image"
	}
	return name
}
