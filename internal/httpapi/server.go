package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tunecrate/internal/auth"
	"tunecrate/internal/logging"
	"tunecrate/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, username, password string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// CatalogService exposes the shared song catalog.
type CatalogService interface {
	List(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id int64) (store.Song, error)
	Create(ctx context.Context, identity auth.Identity, fields store.SongFields) (store.Song, error)
	Update(ctx context.Context, identity auth.Identity, id int64, fields store.SongFields) (store.Song, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	ListOwned(ctx context.Context, identity auth.Identity) ([]*store.Playlist, error)
	Create(ctx context.Context, identity auth.Identity, name string, isPublic bool, tags []string) (*store.Playlist, error)
	Delete(ctx context.Context, identity auth.Identity, playlistID int64) error
	AddSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error)
	RemoveSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error)
}

// LikeService coordinates the like relation and its playlist mirror.
type LikeService interface {
	Toggle(ctx context.Context, identity auth.Identity, songID int64) (bool, error)
	ListLiked(ctx context.Context, identity auth.Identity) ([]int64, error)
}

// TokenVerifier resolves bearer tokens into identities.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	catalog   CatalogService
	playlists PlaylistService
	likes     LikeService
	verifier  TokenVerifier
}

// New configures a Server with the given services.
func New(users UserService, catalog CatalogService, playlists PlaylistService, likes LikeService, verifier TokenVerifier) *Server {
	return &Server{
		users:     users,
		catalog:   catalog,
		playlists: playlists,
		likes:     likes,
		verifier:  verifier,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("POST /api/v1/songs", s.handleCreateSong)
	mux.HandleFunc("PUT /api/v1/songs/{id}", s.handleUpdateSong)
	mux.HandleFunc("DELETE /api/v1/songs/{id}", s.handleDeleteSong)

	mux.HandleFunc("GET /api/v1/me/playlists", s.handleListPlaylists)
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("POST /api/v1/playlists/{id}/songs", s.handleAddPlaylistSong)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/songs/{songID}", s.handleRemovePlaylistSong)

	mux.HandleFunc("POST /api/v1/me/likes/{songID}", s.handleToggleLike)
	mux.HandleFunc("GET /api/v1/me/likes", s.handleListLiked)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// identify resolves the caller from the Authorization header. A missing
// credential and an invalid one are distinct failures.
func (s *Server) identify(r *http.Request) (auth.Identity, error) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Identity{}, auth.ErrTokenMissing
	}
	return s.verifier.Verify(token)
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is logged with the request ID and reported as a generic
// internal error so storage details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, auth.ErrTokenInvalid):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "bad token"})
	case errors.Is(err, store.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, store.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
	case errors.Is(err, store.ErrSongNotFound), errors.Is(err, store.ErrPlaylistNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logging.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
