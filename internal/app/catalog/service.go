package catalog

import (
	"context"

	"tunecrate/internal/app/policy"
	"tunecrate/internal/auth"
	"tunecrate/internal/store"
)

// Store captures the persistence needs for catalog workflows.
type Store interface {
	ListSongs(ctx context.Context) ([]store.Song, error)
	GetSong(ctx context.Context, id int64) (store.Song, error)
	CreateSong(ctx context.Context, fields store.SongFields) (store.Song, error)
	UpdateSong(ctx context.Context, id int64, fields store.SongFields) (store.Song, error)
	DeleteSong(ctx context.Context, id int64) error
}

// Service coordinates shared-catalog operations. Reads are public; every
// mutation is admin-gated through the policy step.
type Service interface {
	List(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id int64) (store.Song, error)
	Create(ctx context.Context, identity auth.Identity, fields store.SongFields) (store.Song, error)
	Update(ctx context.Context, identity auth.Identity, id int64, fields store.SongFields) (store.Song, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.GetSong(ctx, id)
}

func (s *service) Create(ctx context.Context, identity auth.Identity, fields store.SongFields) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	if err := policy.RequireAdmin(identity); err != nil {
		return store.Song{}, err
	}
	return s.store.CreateSong(ctx, fields)
}

func (s *service) Update(ctx context.Context, identity auth.Identity, id int64, fields store.SongFields) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	if err := policy.RequireAdmin(identity); err != nil {
		return store.Song{}, err
	}
	return s.store.UpdateSong(ctx, id, fields)
}

func (s *service) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := policy.RequireAdmin(identity); err != nil {
		return err
	}
	return s.store.DeleteSong(ctx, id)
}
