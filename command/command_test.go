package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// fakeRepo is an in-memory types.ProfileRepository used across the command
// tests. It mimics the backend's merge-on-conflict and unique-constraint
// behavior.
type fakeRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*types.Profile
	patches   []types.ProfilePatch
	getErr    error
	createErr error
	upsertErr error
	deleteErr error
	getCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{profiles: make(map[uuid.UUID]*types.Profile)}
}

func (r *fakeRepo) Get(_ context.Context, userID uuid.UUID) (*types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	row, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (r *fakeRepo) Create(_ context.Context, userID uuid.UUID) (*types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.profiles[userID]; ok {
		return nil, fmt.Errorf(`(23505) duplicate key value violates unique constraint "profiles_user_id_key"`)
	}
	now := time.Now().UTC()
	row := &types.Profile{ID: uuid.New(), UserID: userID, CreatedAt: &now, UpdatedAt: &now}
	r.profiles[userID] = row
	clone := *row
	return &clone, nil
}

func (r *fakeRepo) Upsert(_ context.Context, userID uuid.UUID, patch types.ProfilePatch) (*types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	r.patches = append(r.patches, patch)
	row, ok := r.profiles[userID]
	if !ok {
		row = &types.Profile{ID: uuid.New(), UserID: userID}
		r.profiles[userID] = row
	}
	if patch.FullName != nil {
		row.FullName = *patch.FullName
	}
	if patch.Username != nil {
		row.Username = *patch.Username
	}
	if patch.Bio != nil {
		row.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		row.AvatarURL = *patch.AvatarURL
	}
	now := time.Now().UTC()
	row.UpdatedAt = &now
	clone := *row
	return &clone, nil
}

func (r *fakeRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.profiles, userID)
	return nil
}

// fakeSessions resolves a fixed user, or fails like a signed-out client.
type fakeSessions struct {
	user *types.AuthUser
}

func (s *fakeSessions) CurrentUser(context.Context) (*types.AuthUser, error) {
	if s.user == nil {
		return nil, types.ErrNoUserLoggedIn
	}
	clone := *s.user
	return &clone, nil
}

type uploadCall struct {
	path        string
	contentType string
	data        []byte
}

// fakeAvatars records storage traffic and serves deterministic public URLs.
type fakeAvatars struct {
	uploads   []uploadCall
	removed   []string
	uploadErr error
	urlErr    error
	removeErr error
}

func (s *fakeAvatars) Upload(_ context.Context, path string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, uploadCall{path: path, contentType: contentType, data: data})
	return nil
}

func (s *fakeAvatars) PublicURL(_ context.Context, path string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://cdn.test/storage/v1/object/public/avatars/" + path, nil
}

func (s *fakeAvatars) Remove(_ context.Context, paths ...string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, paths...)
	return nil
}

// fakeWaitlist records signups and can simulate the duplicate-email insert.
type fakeWaitlist struct {
	entries []types.WaitlistEntry
	addErr  error
}

func (s *fakeWaitlist) Add(_ context.Context, entry types.WaitlistEntry) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

// hookRecorder captures emitted profile events.
type hookRecorder struct {
	events []types.ProfileEvent
}

func (h *hookRecorder) hooks() types.Hooks {
	return types.Hooks{
		AfterProfileChange: func(_ context.Context, event types.ProfileEvent) {
			h.events = append(h.events, event)
		},
	}
}

var errBackendDown = errors.New("backend unavailable")
