package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/stretchr/testify/require"
	postgrest "github.com/supabase-community/postgrest-go"
)

type restRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

// newRestServer fakes just enough of the PostgREST surface for the
// repository: it records every request and replies with the configured
// status and body.
func newRestServer(t *testing.T, status int, body string) (*httptest.Server, *[]restRequest) {
	t.Helper()
	var seen []restRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := restRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
		}
		for key, values := range r.URL.Query() {
			req.Query[key] = values[0]
		}
		if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func newTestRepository(t *testing.T, server *httptest.Server) *Repository {
	t.Helper()
	rest := postgrest.NewClient(server.URL, "public", nil)
	repo, err := NewRepository(RepositoryConfig{Rest: rest})
	require.NoError(t, err)
	return repo
}

func profileJSON(userID uuid.UUID) string {
	return fmt.Sprintf(`{"id":%q,"user_id":%q,"full_name":"Ada Lovelace"}`, uuid.New(), userID)
}

func TestRepositoryGet(t *testing.T) {
	userID := uuid.New()
	server, seen := newRestServer(t, http.StatusOK, profileJSON(userID))
	repo := newTestRepository(t, server)

	got, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)
	require.Equal(t, "Ada Lovelace", got.FullName)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "/profiles", req.Path)
	require.Equal(t, "eq."+userID.String(), req.Query["user_id"])
}

func TestRepositoryGetReturnsNilOnNoRow(t *testing.T) {
	body := `{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`
	server, _ := newRestServer(t, http.StatusNotAcceptable, body)
	repo := newTestRepository(t, server)

	got, err := repo.Get(context.Background(), uuid.New())
	require.NoError(t, err, "a single-row miss is not exceptional")
	require.Nil(t, got)
}

func TestRepositoryGetPropagatesOtherErrors(t *testing.T) {
	body := `{"code":"42501","details":null,"hint":null,"message":"permission denied for table profiles"}`
	server, _ := newRestServer(t, http.StatusForbidden, body)
	repo := newTestRepository(t, server)

	_, err := repo.Get(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestRepositoryCreateInsertsUserIDOnly(t *testing.T) {
	userID := uuid.New()
	server, seen := newRestServer(t, http.StatusCreated, profileJSON(userID))
	repo := newTestRepository(t, server)

	got, err := repo.Create(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)

	req := (*seen)[0]
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, map[string]any{"user_id": userID.String()}, req.Body)
}

func TestRepositoryUpsertPayload(t *testing.T) {
	userID := uuid.New()
	server, seen := newRestServer(t, http.StatusOK, profileJSON(userID))
	repo := newTestRepository(t, server)

	bio := "hello"
	_, err := repo.Upsert(context.Background(), userID, types.ProfilePatch{Bio: &bio})
	require.NoError(t, err)

	req := (*seen)[0]
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "user_id", req.Query["on_conflict"], "conflict target keeps one row per user")
	require.Equal(t, "hello", req.Body["bio"])
	require.NotContains(t, req.Body, "full_name", "unset patch fields stay out of the payload")
}

func TestRepositoryUpsertClearsAvatarWithExplicitNull(t *testing.T) {
	userID := uuid.New()
	server, seen := newRestServer(t, http.StatusOK, profileJSON(userID))
	repo := newTestRepository(t, server)

	_, err := repo.Upsert(context.Background(), userID, ClearAvatarPatch())
	require.NoError(t, err)

	req := (*seen)[0]
	require.Contains(t, req.Body, "avatar_url", "clearing must send the column explicitly")
	require.Nil(t, req.Body["avatar_url"], "cleared avatar serializes as JSON null")
}

func TestRepositoryDelete(t *testing.T) {
	userID := uuid.New()
	server, seen := newRestServer(t, http.StatusOK, `[]`)
	repo := newTestRepository(t, server)

	require.NoError(t, repo.Delete(context.Background(), userID))

	req := (*seen)[0]
	require.Equal(t, http.MethodDelete, req.Method)
	require.Equal(t, "eq."+userID.String(), req.Query["user_id"])
}

func TestRepositoryRejectsNilUserID(t *testing.T) {
	server, _ := newRestServer(t, http.StatusOK, `[]`)
	repo := newTestRepository(t, server)
	ctx := context.Background()

	_, err := repo.Get(ctx, uuid.Nil)
	require.ErrorIs(t, err, types.ErrUserIDRequired)
	_, err = repo.Create(ctx, uuid.Nil)
	require.ErrorIs(t, err, types.ErrUserIDRequired)
	_, err = repo.Upsert(ctx, uuid.Nil, types.ProfilePatch{})
	require.ErrorIs(t, err, types.ErrUserIDRequired)
	require.ErrorIs(t, repo.Delete(ctx, uuid.Nil), types.ErrUserIDRequired)
}
