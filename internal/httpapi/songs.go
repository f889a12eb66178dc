package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tunecrate/internal/store"
)

type songRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"`
	AudioURL string `json:"audio_url"`
}

func (req songRequest) fields() store.SongFields {
	return store.SongFields{
		Title:    req.Title,
		Artist:   req.Artist,
		Album:    req.Album,
		Duration: req.Duration,
		AudioURL: req.AudioURL,
	}
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	song, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req songRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Title == "" || req.Artist == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title and artist are required"})
		return
	}

	song, err := s.catalog.Create(r.Context(), identity, req.fields())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req songRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Title == "" || req.Artist == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title and artist are required"})
		return
	}

	song, err := s.catalog.Update(r.Context(), identity, id, req.fields())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.catalog.Delete(r.Context(), identity, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a numeric path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
