package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tunecrate/internal/auth"
	"tunecrate/internal/logging"
	"tunecrate/internal/store"
)

type stubUserService struct {
	registeredUser store.User
	registerErr    error

	loginToken string
	loginErr   error

	lastUsername string
}

func (s *stubUserService) Register(_ context.Context, username, _ string) (store.User, error) {
	s.lastUsername = username
	if s.registerErr != nil {
		return store.User{}, s.registerErr
	}
	return s.registeredUser, nil
}

func (s *stubUserService) Login(_ context.Context, username, _ string) (string, error) {
	s.lastUsername = username
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.loginToken, nil
}

type stubCatalogService struct {
	songs   []store.Song
	song    store.Song
	err     error
	deleted []int64
}

func (s *stubCatalogService) List(context.Context) ([]store.Song, error) {
	return s.songs, s.err
}

func (s *stubCatalogService) Get(context.Context, int64) (store.Song, error) {
	if s.err != nil {
		return store.Song{}, s.err
	}
	return s.song, nil
}

func (s *stubCatalogService) Create(_ context.Context, _ auth.Identity, _ store.SongFields) (store.Song, error) {
	if s.err != nil {
		return store.Song{}, s.err
	}
	return s.song, nil
}

func (s *stubCatalogService) Update(_ context.Context, _ auth.Identity, _ int64, _ store.SongFields) (store.Song, error) {
	if s.err != nil {
		return store.Song{}, s.err
	}
	return s.song, nil
}

func (s *stubCatalogService) Delete(_ context.Context, _ auth.Identity, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubPlaylistService struct {
	playlists []*store.Playlist
	playlist  *store.Playlist
	err       error

	lastPlaylistID int64
	lastSongID     int64
	lastName       string
}

func (s *stubPlaylistService) ListOwned(context.Context, auth.Identity) ([]*store.Playlist, error) {
	return s.playlists, s.err
}

func (s *stubPlaylistService) Create(_ context.Context, _ auth.Identity, name string, _ bool, _ []string) (*store.Playlist, error) {
	s.lastName = name
	if s.err != nil {
		return nil, s.err
	}
	return s.playlist, nil
}

func (s *stubPlaylistService) Delete(_ context.Context, _ auth.Identity, playlistID int64) error {
	s.lastPlaylistID = playlistID
	return s.err
}

func (s *stubPlaylistService) AddSong(_ context.Context, _ auth.Identity, playlistID, songID int64) (*store.Playlist, error) {
	s.lastPlaylistID = playlistID
	s.lastSongID = songID
	if s.err != nil {
		return nil, s.err
	}
	return s.playlist, nil
}

func (s *stubPlaylistService) RemoveSong(_ context.Context, _ auth.Identity, playlistID, songID int64) (*store.Playlist, error) {
	s.lastPlaylistID = playlistID
	s.lastSongID = songID
	if s.err != nil {
		return nil, s.err
	}
	return s.playlist, nil
}

type stubLikeService struct {
	liked      bool
	likedSongs []int64
	err        error

	lastSongID int64
}

func (s *stubLikeService) Toggle(_ context.Context, _ auth.Identity, songID int64) (bool, error) {
	s.lastSongID = songID
	if s.err != nil {
		return false, s.err
	}
	return s.liked, nil
}

func (s *stubLikeService) ListLiked(context.Context, auth.Identity) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.likedSongs, nil
}

// stubVerifier accepts exactly one token string.
type stubVerifier struct {
	token    string
	identity auth.Identity
}

func (s *stubVerifier) Verify(token string) (auth.Identity, error) {
	if token == s.token {
		return s.identity, nil
	}
	return auth.Identity{}, auth.ErrTokenInvalid
}

type testServer struct {
	handler   http.Handler
	users     *stubUserService
	catalog   *stubCatalogService
	playlists *stubPlaylistService
	likes     *stubLikeService
}

func newTestServer() *testServer {
	users := &stubUserService{}
	catalog := &stubCatalogService{}
	playlists := &stubPlaylistService{}
	likes := &stubLikeService{}
	verifier := &stubVerifier{
		token:    "good-token",
		identity: auth.Identity{UserID: 7, Username: "alice", Role: store.RoleUser},
	}

	return &testServer{
		handler:   New(users, catalog, playlists, likes, verifier).Routes(),
		users:     users,
		catalog:   catalog,
		playlists: playlists,
		likes:     likes,
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestSignupSuccess(t *testing.T) {
	ts := newTestServer()
	ts.users.registeredUser = store.User{ID: 1, Username: "alice", Role: store.RoleUser}

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"username": "alice", "password": "hunter2"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var user store.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != store.RoleUser {
		t.Fatalf("expected user role, got %q", user.Role)
	}
}

func TestSignupIgnoresClientSuppliedRole(t *testing.T) {
	ts := newTestServer()
	ts.users.registeredUser = store.User{ID: 1, Username: "mallory", Role: store.RoleUser}

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"username": "mallory", "password": "hunter2", "role": "admin"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var user store.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != store.RoleUser {
		t.Fatalf("client-supplied role must be ignored, got %q", user.Role)
	}
}

func TestSignupConflict(t *testing.T) {
	ts := newTestServer()
	ts.users.registerErr = store.ErrUserExists

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"username": "alice", "password": "hunter2"})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSignupMissingFields(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"username": "   "})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer()
	ts.users.loginToken = "signed-token"

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "alice", "password": "hunter2"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if resp.Token != "signed-token" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer()
	ts.users.loginErr = store.ErrInvalidCredentials

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "alice", "password": "wrong"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMissingTokenDistinctFromInvalid(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/me/playlists", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "authentication required" {
		t.Fatalf("expected missing-credential message, got %q", msg)
	}

	rec = doRequest(t, ts.handler, http.MethodGet, "/api/v1/me/playlists", "forged-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "bad token" {
		t.Fatalf("expected invalid-credential message, got %q", msg)
	}
}

func TestListSongsIsPublic(t *testing.T) {
	ts := newTestServer()
	ts.catalog.songs = []store.Song{{ID: 1, Title: "Teardrop", Artist: "Massive Attack"}}

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/songs", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Songs []store.Song `json:"songs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode songs: %v", err)
	}
	if len(resp.Songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(resp.Songs))
	}
}

func TestCreateSongForbiddenForNonAdmin(t *testing.T) {
	ts := newTestServer()
	ts.catalog.err = store.ErrForbidden

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/songs", "good-token",
		map[string]any{"title": "Teardrop", "artist": "Massive Attack"})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateSongRequiresAuth(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/songs", "",
		map[string]any{"title": "Teardrop", "artist": "Massive Attack"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetSongNotFoundStatus(t *testing.T) {
	ts := newTestServer()
	ts.catalog.err = store.ErrSongNotFound

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/songs/404", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetSongInvalidID(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/songs/abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteSong(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodDelete, "/api/v1/songs/7", "good-token", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(ts.catalog.deleted) != 1 || ts.catalog.deleted[0] != 7 {
		t.Fatalf("expected song 7 deleted, got %v", ts.catalog.deleted)
	}
}

func TestCreatePlaylist(t *testing.T) {
	ts := newTestServer()
	ts.playlists.playlist = &store.Playlist{ID: 3, Name: "Road Trip", OwnerID: 7}

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/playlists", "good-token",
		map[string]any{"name": "Road Trip", "is_public": true, "tags": []string{"chill"}})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.playlists.lastName != "Road Trip" {
		t.Fatalf("expected playlist name forwarded, got %q", ts.playlists.lastName)
	}
}

func TestCreatePlaylistReservedName(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/playlists", "good-token",
		map[string]any{"name": store.LikedSongsName})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ts.playlists.lastName != "" {
		t.Fatal("reserved name must never reach the service")
	}
}

func TestDeletePlaylistForbidden(t *testing.T) {
	ts := newTestServer()
	ts.playlists.err = store.ErrForbidden

	rec := doRequest(t, ts.handler, http.MethodDelete, "/api/v1/playlists/3", "good-token", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAddPlaylistSong(t *testing.T) {
	ts := newTestServer()
	ts.playlists.playlist = &store.Playlist{
		ID:      3,
		Name:    "Road Trip",
		OwnerID: 7,
		Songs:   []store.Song{{ID: 9, Title: "Kerala", Artist: "Bonobo"}},
	}

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/playlists/3/songs", "good-token",
		map[string]any{"song_id": 9})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.playlists.lastPlaylistID != 3 || ts.playlists.lastSongID != 9 {
		t.Fatalf("unexpected forwarded ids %d/%d", ts.playlists.lastPlaylistID, ts.playlists.lastSongID)
	}

	var playlist store.Playlist
	if err := json.Unmarshal(rec.Body.Bytes(), &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if len(playlist.Songs) != 1 || playlist.Songs[0].ID != 9 {
		t.Fatalf("expected updated playlist in response, got %+v", playlist)
	}
}

func TestAddPlaylistSongMissingSongID(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/playlists/3/songs", "good-token",
		map[string]any{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRemovePlaylistSong(t *testing.T) {
	ts := newTestServer()
	ts.playlists.playlist = &store.Playlist{ID: 3, Name: "Road Trip", OwnerID: 7, Songs: []store.Song{}}

	rec := doRequest(t, ts.handler, http.MethodDelete, "/api/v1/playlists/3/songs/9", "good-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.playlists.lastPlaylistID != 3 || ts.playlists.lastSongID != 9 {
		t.Fatalf("unexpected forwarded ids %d/%d", ts.playlists.lastPlaylistID, ts.playlists.lastSongID)
	}
}

func TestToggleLike(t *testing.T) {
	ts := newTestServer()
	ts.likes.liked = true

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/me/likes/9", "good-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp toggleLikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	if !resp.Liked {
		t.Fatal("expected liked=true")
	}
	if ts.likes.lastSongID != 9 {
		t.Fatalf("expected song 9 forwarded, got %d", ts.likes.lastSongID)
	}
}

func TestToggleLikeUnknownSong(t *testing.T) {
	ts := newTestServer()
	ts.likes.err = store.ErrSongNotFound

	rec := doRequest(t, ts.handler, http.MethodPost, "/api/v1/me/likes/404", "good-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListLikedSongs(t *testing.T) {
	ts := newTestServer()
	ts.likes.likedSongs = []int64{2, 9}

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/me/likes", "good-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp likedSongsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode liked songs: %v", err)
	}
	if len(resp.SongIDs) != 2 || resp.SongIDs[0] != 2 || resp.SongIDs[1] != 9 {
		t.Fatalf("unexpected ids %v", resp.SongIDs)
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	ts := newTestServer()
	ts.catalog.err = errors.New("pq: connection refused")

	rec := doRequest(t, ts.handler, http.MethodGet, "/api/v1/songs", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "internal error" {
		t.Fatalf("storage detail leaked: %q", msg)
	}
}

func TestInternalErrorsLogWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logging.SetGlobalLogger(logging.New(logging.Config{Level: "info", Output: &buf}))

	ts := newTestServer()
	ts.catalog.err = errors.New("pq: connection refused")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs", nil)
	req = req.WithContext(context.WithValue(req.Context(), logging.RequestIDKey, "req-123"))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	logged := buf.String()
	if !strings.Contains(logged, "req-123") {
		t.Fatalf("expected request id in log output, got %q", logged)
	}
	if !strings.Contains(logged, "connection refused") {
		t.Fatalf("expected underlying error in log output, got %q", logged)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer()

	rec := doRequest(t, ts.handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
