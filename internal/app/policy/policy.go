// Package policy is the single capability-evaluation step run before every
// gated mutation. Handlers and services call these helpers instead of
// spreading role and ownership comparisons across routes.
package policy

import (
	"tunecrate/internal/auth"
	"tunecrate/internal/store"
)

// RequireAdmin permits the operation only for admin identities.
func RequireAdmin(identity auth.Identity) error {
	if !identity.IsAdmin() {
		return store.ErrForbidden
	}
	return nil
}

// RequireOwner permits the operation only when the caller owns the resource.
func RequireOwner(identity auth.Identity, ownerID int64) error {
	if identity.UserID != ownerID {
		return store.ErrForbidden
	}
	return nil
}

// RequireMutablePlaylist rejects mutations on playlists the caller does not
// own, and on the sentinel Liked Songs playlist, which only the like
// synchronizer may edit.
func RequireMutablePlaylist(identity auth.Identity, ref store.PlaylistRef) error {
	if err := RequireOwner(identity, ref.OwnerID); err != nil {
		return err
	}
	if ref.Liked {
		return store.ErrForbidden
	}
	return nil
}
