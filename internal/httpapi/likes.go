package httpapi

import (
	"net/http"
)

type toggleLikeResponse struct {
	Liked bool `json:"liked"`
}

type likedSongsResponse struct {
	SongIDs []int64 `json:"song_ids"`
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	liked, err := s.likes.Toggle(r.Context(), identity, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleLikeResponse{Liked: liked})
}

func (s *Server) handleListLiked(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ids, err := s.likes.ListLiked(r.Context(), identity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, likedSongsResponse{SongIDs: ids})
}
