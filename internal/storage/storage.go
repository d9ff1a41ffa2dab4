// Package storage puts recipe media somewhere a browser can fetch it.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Store interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL reverses Put's URL; ok is false for foreign URLs.
	KeyFromURL(url string) (key string, ok bool)
}

// RecipeImageKey builds "recipes/<id>/<slug>-<uuid><ext>".
func RecipeImageKey(recipeID uint, title, ext string) string {
	name := slug.Make(title)
	if name == "" {
		name = "recipe"
	}
	if len(name) > 60 {
		name = strings.TrimRight(name[:60], "-")
	}
	return fmt.Sprintf("recipes/%d/%s-%s%s", recipeID, name, uuid.NewString(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func trimURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
