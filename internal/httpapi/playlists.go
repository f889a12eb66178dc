package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"tunecrate/internal/store"
)

type createPlaylistRequest struct {
	Name     string   `json:"name"`
	IsPublic bool     `json:"is_public"`
	Tags     []string `json:"tags"`
}

type addPlaylistSongRequest struct {
	SongID int64 `json:"song_id"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	playlists, err := s.playlists.ListOwned(r.Context(), identity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Playlists []*store.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "playlist name is required"})
		return
	}
	if req.Name == store.LikedSongsName {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "playlist name is reserved"})
		return
	}

	playlist, err := s.playlists.Create(r.Context(), identity, req.Name, req.IsPublic, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.playlists.Delete(r.Context(), identity, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addPlaylistSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.SongID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "song_id is required"})
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), identity, id, req.SongID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	playlist, err := s.playlists.RemoveSong(r.Context(), identity, id, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}
