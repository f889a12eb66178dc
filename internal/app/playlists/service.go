package playlists

import (
	"context"

	"tunecrate/internal/app/policy"
	"tunecrate/internal/auth"
	"tunecrate/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylistsByUser(ctx context.Context, userID int64) ([]*store.Playlist, error)
	PlaylistByID(ctx context.Context, id int64) (*store.Playlist, error)
	PlaylistRefByID(ctx context.Context, id int64) (store.PlaylistRef, error)
	CreatePlaylist(ctx context.Context, userID int64, name string, isPublic bool, tags []string) (*store.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error
}

// Service coordinates playlist operations. Every mutation passes the
// ownership policy check before it touches the store.
type Service interface {
	ListOwned(ctx context.Context, identity auth.Identity) ([]*store.Playlist, error)
	Create(ctx context.Context, identity auth.Identity, name string, isPublic bool, tags []string) (*store.Playlist, error)
	Delete(ctx context.Context, identity auth.Identity, playlistID int64) error
	AddSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error)
	RemoveSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) ListOwned(ctx context.Context, identity auth.Identity) ([]*store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistsByUser(ctx, identity.UserID)
}

// Create always records the caller as owner; a client-supplied owner is
// never honored.
func (s *service) Create(ctx context.Context, identity auth.Identity, name string, isPublic bool, tags []string) (*store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreatePlaylist(ctx, identity.UserID, name, isPublic, tags)
}

func (s *service) Delete(ctx context.Context, identity auth.Identity, playlistID int64) error {
	if err := s.authorizeMutation(ctx, identity, playlistID); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, playlistID)
}

// AddSong records the membership and returns the playlist in its new state.
func (s *service) AddSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error) {
	if err := s.authorizeMutation(ctx, identity, playlistID); err != nil {
		return nil, err
	}
	if err := s.store.AddSongToPlaylist(ctx, playlistID, songID); err != nil {
		return nil, err
	}
	return s.store.PlaylistByID(ctx, playlistID)
}

func (s *service) RemoveSong(ctx context.Context, identity auth.Identity, playlistID, songID int64) (*store.Playlist, error) {
	if err := s.authorizeMutation(ctx, identity, playlistID); err != nil {
		return nil, err
	}
	if err := s.store.RemoveSongFromPlaylist(ctx, playlistID, songID); err != nil {
		return nil, err
	}
	return s.store.PlaylistByID(ctx, playlistID)
}

func (s *service) authorizeMutation(ctx context.Context, identity auth.Identity, playlistID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref, err := s.store.PlaylistRefByID(ctx, playlistID)
	if err != nil {
		return err
	}
	return policy.RequireMutablePlaylist(identity, ref)
}
