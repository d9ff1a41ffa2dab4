package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sohailKhanIITD/recipe-app-api/internal/config"
)

func TestRecipeImageKey(t *testing.T) {
	key := RecipeImageKey(12, "Crème Brûlée & Friends!", ".webp")

	re := regexp.MustCompile(`^recipes/12/creme-brulee-and-friends-[0-9a-f-]{36}\.webp$`)
	if !re.MatchString(key) {
		t.Errorf("RecipeImageKey() = %q", key)
	}

	if key := RecipeImageKey(3, "!!!", ".webp"); !strings.HasPrefix(key, "recipes/3/recipe-") {
		t.Errorf("RecipeImageKey(blank slug) = %q", key)
	}
}

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/media/")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	url, err := s.Put(ctx, "recipes/1/a.webp", strings.NewReader("data"), 4, "image/webp")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "/media/recipes/1/a.webp" {
		t.Errorf("Put() url = %q", url)
	}

	got, err := os.ReadFile(filepath.Join(dir, "recipes", "1", "a.webp"))
	if err != nil || string(got) != "data" {
		t.Fatalf("stored file = %q, %v", got, err)
	}

	key, ok := s.KeyFromURL(url)
	if !ok || key != "recipes/1/a.webp" {
		t.Errorf("KeyFromURL() = %q, %v", key, ok)
	}
	if _, ok := s.KeyFromURL("https://elsewhere.example.com/x.webp"); ok {
		t.Errorf("KeyFromURL(foreign) ok = true")
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if _, err := s.Put(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain"); err == nil {
		t.Fatal("Put(../outside.txt) expected error")
	}
}

func TestS3PublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{"aws", config.StorageConfig{S3Bucket: "b", S3Region: "eu-west-1", PublicBaseURL: "/media"}, "https://b.s3.eu-west-1.amazonaws.com"},
		{"endpoint", config.StorageConfig{S3Bucket: "b", S3Endpoint: "http://minio:9000/"}, "http://minio:9000/b"},
		{"cdn", config.StorageConfig{S3Bucket: "b", PublicBaseURL: "https://cdn.example.com"}, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := publicBaseURL(tt.cfg); got != tt.want {
				t.Errorf("publicBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}

	s := NewS3Store(config.StorageConfig{S3Bucket: "b", S3Region: "eu-west-1", S3AccessKeyID: "k", S3SecretAccessKey: "s"})
	key, ok := s.KeyFromURL("https://b.s3.eu-west-1.amazonaws.com/recipes/1/x.webp")
	if !ok || key != "recipes/1/x.webp" {
		t.Errorf("KeyFromURL() = %q, %v", key, ok)
	}
}
