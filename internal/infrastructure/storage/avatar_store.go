package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

const (
	maxAvatarBytes = 2 << 20
	fetchTimeout   = 10 * time.Second
)

// LinkStore keeps the generated avatar URL as is.
type LinkStore struct{}

func (LinkStore) Save(_ context.Context, _ string, sourceURL string) (string, error) {
	return sourceURL, nil
}

func (LinkStore) Delete(context.Context, string) error { return nil }

// GCSStore copies generated avatars into a bucket under avatars/<userID>/.
type GCSStore struct {
	Client *gcs.Client
	Bucket string
	HTTP   *http.Client
}

func NewGCSStore(client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket, HTTP: &http.Client{Timeout: fetchTimeout}}
}

func (s *GCSStore) Save(ctx context.Context, userID, sourceURL string) (string, error) {
	body, contentType, err := fetchImage(ctx, s.HTTP, sourceURL)
	if err != nil {
		return "", err
	}
	objectPath := fmt.Sprintf("avatars/%s/%s.png", userID, uuid.NewString())
	url, err := helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return url, nil
}

// Delete removes an object this store uploaded; other URLs are ignored.
func (s *GCSStore) Delete(ctx context.Context, url string) error {
	objectPath, ok := helpers.ObjectPathFromURL(s.Bucket, url)
	if !ok {
		return nil
	}
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath)
}

func fetchImage(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch avatar: unexpected status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("fetch avatar: unexpected content type %q", contentType)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch avatar: %w", err)
	}
	if len(body) > maxAvatarBytes {
		return nil, "", fmt.Errorf("fetch avatar: image larger than %d bytes", maxAvatarBytes)
	}
	return body, contentType, nil
}

var (
	_ application.AvatarStore = LinkStore{}
	_ application.AvatarStore = (*GCSStore)(nil)
)
