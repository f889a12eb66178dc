package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Song represents a track in the shared catalog. Songs are global and not
// owned by any user.
type Song struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// SongFields carries the mutable attributes of a song for create/update.
type SongFields struct {
	Title    string
	Artist   string
	Album    string
	Duration int
	AudioURL string
}

func validateSongFields(fields SongFields) error {
	if fields.Title == "" || fields.Artist == "" {
		return fmt.Errorf("title and artist are required")
	}
	if fields.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// ListSongs returns the whole catalog in insertion (id) order. The order is
// stable across calls.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, artist, COALESCE(album, ''), COALESCE(duration, 0), COALESCE(audio_url, '')
		FROM songs
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AudioURL); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// GetSong returns a single song by ID.
func (s *Store) GetSong(ctx context.Context, id int64) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, artist, COALESCE(album, ''), COALESCE(duration, 0), COALESCE(audio_url, '')
		FROM songs
		WHERE id = $1
	`, id).Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AudioURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// CreateSong adds a song to the shared catalog.
func (s *Store) CreateSong(ctx context.Context, fields SongFields) (Song, error) {
	if err := validateSongFields(fields); err != nil {
		return Song{}, err
	}

	var song Song
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (title, artist, album, duration, audio_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, artist, COALESCE(album, ''), COALESCE(duration, 0), COALESCE(audio_url, '')
	`, fields.Title, fields.Artist, nullIfEmpty(fields.Album), nullIfZero(fields.Duration), nullIfEmpty(fields.AudioURL)).
		Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AudioURL)
	if err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// UpdateSong replaces the mutable fields of an existing song.
func (s *Store) UpdateSong(ctx context.Context, id int64, fields SongFields) (Song, error) {
	if err := validateSongFields(fields); err != nil {
		return Song{}, err
	}

	var song Song
	err := s.db.QueryRowContext(ctx, `
		UPDATE songs
		SET title = $1, artist = $2, album = $3, duration = $4, audio_url = $5
		WHERE id = $6
		RETURNING id, title, artist, COALESCE(album, ''), COALESCE(duration, 0), COALESCE(audio_url, '')
	`, fields.Title, fields.Artist, nullIfEmpty(fields.Album), nullIfZero(fields.Duration), nullIfEmpty(fields.AudioURL), id).
		Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AudioURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("update song: %w", err)
	}
	return song, nil
}

// DeleteSong removes a song from the catalog. Likes and playlist memberships
// referencing it are cleaned up by the schema's cascades, so the like mirror
// stays consistent.
func (s *Store) DeleteSong(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}
