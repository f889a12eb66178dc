package likes

import (
	"context"

	"tunecrate/internal/auth"
)

// Store captures the persistence needs for like workflows.
type Store interface {
	ToggleLike(ctx context.Context, userID, songID int64) (bool, error)
	ListLikedSongIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Service coordinates the like relation. Operations are scoped to the
// caller's own likes by construction; no other user's relation is reachable.
type Service interface {
	Toggle(ctx context.Context, identity auth.Identity, songID int64) (bool, error)
	ListLiked(ctx context.Context, identity auth.Identity) ([]int64, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Toggle(ctx context.Context, identity auth.Identity, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleLike(ctx, identity.UserID, songID)
}

func (s *service) ListLiked(ctx context.Context, identity auth.Identity) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListLikedSongIDs(ctx, identity.UserID)
}
