package supabase

import (
	"bytes"
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/smartodo/go-profilesync/pkg/types"
	storage "github.com/supabase-community/storage-go"
)

// AvatarStore implements types.AvatarStore on a Supabase Storage bucket.
type AvatarStore struct {
	storage *storage.Client
	bucket  string
}

// NewAvatarStore wraps an existing storage client. Most callers go through
// Client.Avatars instead.
func NewAvatarStore(client *storage.Client, bucket string) *AvatarStore {
	if bucket == "" {
		bucket = DefaultAvatarBucket
	}
	return &AvatarStore{storage: client, bucket: bucket}
}

var _ types.AvatarStore = (*AvatarStore)(nil)

// Upload writes the image bytes to the bucket. Upsert is enabled so retrying
// a failed flow with the same derived path cannot collide with its own
// half-finished predecessor.
func (s *AvatarStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	upsert := true
	_, err := s.storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profilesync: avatar upload failed").
			WithMetadata(map[string]any{"bucket": s.bucket, "path": path})
	}
	return nil
}

// PublicURL resolves the browsable URL for an uploaded object. The bucket is
// public, so the URL is derived locally without a network call.
func (s *AvatarStore) PublicURL(_ context.Context, path string) (string, error) {
	res := s.storage.GetPublicUrl(s.bucket, path)
	if res.SignedURL == "" {
		return "", goerrors.New("profilesync: could not resolve avatar public url", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"bucket": s.bucket, "path": path})
	}
	return res.SignedURL, nil
}

// Remove deletes objects from the bucket.
func (s *AvatarStore) Remove(_ context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := s.storage.RemoveFile(s.bucket, paths)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profilesync: avatar removal failed").
			WithMetadata(map[string]any{"bucket": s.bucket, "paths": paths})
	}
	return nil
}
