package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ToggleLike flips the like relation for (userID, songID) and mirrors the new
// state into the user's Liked Songs playlist, creating that playlist lazily
// on first like. Both writes happen in one transaction so the relation and
// the mirror can never be observed out of step. Racing toggles on the same
// pair are serialized by a transaction-scoped advisory lock.
func (s *Store) ToggleLike(ctx context.Context, userID, songID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock($1)
	`, toggleLockKey(userID, songID)); err != nil {
		return false, fmt.Errorf("acquire toggle lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM songs WHERE id = $1)
	`, songID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check song: %w", err)
	}
	if !exists {
		return false, ErrSongNotFound
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM likes
		WHERE user_id = $1 AND song_id = $2
	`, userID, songID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO likes (user_id, song_id)
			VALUES ($1, $2)
		`, userID, songID); err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
	}

	playlistID, err := s.likedPlaylistIDTx(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	if liked {
		err = s.ensureMembership(ctx, tx, playlistID, songID)
	} else {
		err = s.ensureAbsence(ctx, tx, playlistID, songID)
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}
	tx = nil

	return liked, nil
}

// ListLikedSongIDs returns the ids of the songs liked by the user, oldest
// like first.
func (s *Store) ListLikedSongIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at ASC, song_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}
	return ids, nil
}

// toggleLockKey packs the pair into the single bigint advisory-lock space.
func toggleLockKey(userID, songID int64) int64 {
	return userID<<32 | songID&0xffffffff
}

// likedPlaylistIDTx resolves the user's sentinel playlist inside the toggle
// transaction, creating it (private, reserved name) when absent.
func (s *Store) likedPlaylistIDTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id
		FROM playlists
		WHERE user_id = $1 AND is_liked
	`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup liked playlist: %w", err)
	}

	// A user's first likes on two different songs hold different advisory
	// locks, so sentinel creation itself can race. DO NOTHING against the
	// one-per-user index keeps the loser alive; the re-read below adopts
	// whichever row won.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playlists (name, user_id, is_public, is_liked)
		VALUES ($1, $2, FALSE, TRUE)
		ON CONFLICT (user_id) WHERE is_liked DO NOTHING
	`, LikedSongsName, userID); err != nil {
		return 0, fmt.Errorf("create liked playlist: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM playlists
		WHERE user_id = $1 AND is_liked
	`, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup liked playlist: %w", err)
	}
	return id, nil
}
