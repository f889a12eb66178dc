package main

import (
	"net/http"

	"tunecrate/internal/app/catalog"
	"tunecrate/internal/app/likes"
	"tunecrate/internal/app/playlists"
	"tunecrate/internal/app/users"
	"tunecrate/internal/auth"
	"tunecrate/internal/httpapi"
	"tunecrate/internal/middleware"
	"tunecrate/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, verifier *auth.Verifier) http.Handler {
	userSvc := users.New(dataStore, verifier)
	catalogSvc := catalog.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	likeSvc := likes.New(dataStore)

	handler := httpapi.New(userSvc, catalogSvc, playlistSvc, likeSvc, verifier).Routes()

	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
