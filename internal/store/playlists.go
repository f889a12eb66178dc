package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// LikedSongsName is the reserved name of the per-user sentinel playlist that
// mirrors the like relation. It is created lazily by ToggleLike and never by
// direct user action.
const LikedSongsName = "Liked Songs"

// Playlist is a user-owned, named container of catalog songs.
type Playlist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	IsPublic  bool      `json:"is_public"`
	Liked     bool      `json:"is_liked"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	Songs     []Song    `json:"songs"`
}

// PlaylistRef is the minimal projection used for policy checks.
type PlaylistRef struct {
	ID      int64
	OwnerID int64
	Liked   bool
}

// ListPlaylistsByUser returns the user's playlists with their songs embedded,
// in playlist-then-song order.
func (s *Store) ListPlaylistsByUser(ctx context.Context, userID int64) ([]*Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, user_id, is_public, is_liked, tags, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*Playlist, 0)
	for rows.Next() {
		var playlist Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Name, &playlist.OwnerID, &playlist.IsPublic,
			&playlist.Liked, pq.Array(&playlist.Tags), &playlist.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for _, playlist := range playlists {
		songs, err := s.listPlaylistSongs(ctx, playlist.ID)
		if err != nil {
			return nil, err
		}
		playlist.Songs = songs
	}
	return playlists, nil
}

// PlaylistByID returns a single playlist with its songs embedded.
func (s *Store) PlaylistByID(ctx context.Context, id int64) (*Playlist, error) {
	var playlist Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, user_id, is_public, is_liked, tags, created_at
		FROM playlists
		WHERE id = $1
	`, id).Scan(&playlist.ID, &playlist.Name, &playlist.OwnerID, &playlist.IsPublic,
		&playlist.Liked, pq.Array(&playlist.Tags), &playlist.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	songs, err := s.listPlaylistSongs(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	playlist.Songs = songs
	return &playlist, nil
}

// PlaylistRefByID loads the ownership projection for a playlist.
func (s *Store) PlaylistRefByID(ctx context.Context, id int64) (PlaylistRef, error) {
	var ref PlaylistRef
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, is_liked
		FROM playlists
		WHERE id = $1
	`, id).Scan(&ref.ID, &ref.OwnerID, &ref.Liked)
	if errors.Is(err, sql.ErrNoRows) {
		return PlaylistRef{}, ErrPlaylistNotFound
	}
	if err != nil {
		return PlaylistRef{}, fmt.Errorf("lookup playlist: %w", err)
	}
	return ref, nil
}

// CreatePlaylist persists a new playlist owned by the given user.
func (s *Store) CreatePlaylist(ctx context.Context, userID int64, name string, isPublic bool, tags []string) (*Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("playlist name is required")
	}
	if tags == nil {
		tags = []string{}
	}

	var playlist Playlist
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (name, user_id, is_public, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, user_id, is_public, is_liked, tags, created_at
	`, name, userID, isPublic, pq.Array(tags)).Scan(&playlist.ID, &playlist.Name, &playlist.OwnerID,
		&playlist.IsPublic, &playlist.Liked, pq.Array(&playlist.Tags), &playlist.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}

	playlist.Songs = make([]Song, 0)
	return &playlist, nil
}

// DeletePlaylist removes a playlist and its memberships. Memberships are
// deleted first; the ordering is part of the contract, not an optimization.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete playlist songs: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist delete: %w", err)
	}
	tx = nil
	return nil
}

// AddSongToPlaylist records a membership. Adding a song that is already in
// the playlist succeeds without change.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error {
	if err := s.ensureMembership(ctx, s.db, playlistID, songID); err != nil {
		return err
	}
	return nil
}

// RemoveSongFromPlaylist drops a membership. Removing an absent membership
// succeeds without change.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error {
	return s.ensureAbsence(ctx, s.db, playlistID, songID)
}

// execer lets membership helpers run on either the pool or a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureMembership is the idempotent insert half of the membership relation.
func (s *Store) ensureMembership(ctx context.Context, q execer, playlistID, songID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, song_id) DO NOTHING
	`, playlistID, songID)
	if err != nil {
		if isForeignKeyViolation(err) {
			// Deletion wins the delete-vs-add race: an add against a
			// playlist that vanished reports NotFound.
			if constraintName(err) == "playlist_songs_playlist_id_fkey" {
				return ErrPlaylistNotFound
			}
			return ErrSongNotFound
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// ensureAbsence is the idempotent remove half of the membership relation.
func (s *Store) ensureAbsence(ctx context.Context, q execer, playlistID, songID int64) error {
	if _, err := q.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

// PlaylistSongIDs returns the member song ids of a playlist in insertion
// order. An unknown playlist id yields an empty slice.
func (s *Store) PlaylistSongIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id
		FROM playlist_songs
		WHERE playlist_id = $1
		ORDER BY added_at ASC, song_id ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return ids, nil
}

func (s *Store) listPlaylistSongs(ctx context.Context, playlistID int64) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.artist, COALESCE(s.album, ''), COALESCE(s.duration, 0), COALESCE(s.audio_url, '')
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.added_at ASC, ps.song_id ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AudioURL); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}
