package main

import (
	"context"
	"errors"
	"fmt"

	"tunecrate/internal/logging"
	"tunecrate/internal/store"
)

// bootstrap prepares the instance for first use: an admin account when one is
// configured, and a handful of catalog songs when the catalog is empty.
func bootstrap(ctx context.Context, cfg Config, dataStore *store.Store) error {
	if err := ensureAdminUser(ctx, cfg, dataStore); err != nil {
		return err
	}
	return seedCatalog(ctx, dataStore)
}

func ensureAdminUser(ctx context.Context, cfg Config, dataStore *store.Store) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		logging.Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	_, err := dataStore.CreateUser(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}

	// Promotion runs even for a pre-existing account so a demoted or freshly
	// restored admin regains the role on restart.
	if err := dataStore.PromoteToAdmin(ctx, cfg.AdminUsername); err != nil {
		return fmt.Errorf("bootstrap admin role: %w", err)
	}
	return nil
}

func seedCatalog(ctx context.Context, dataStore *store.Store) error {
	songs, err := dataStore.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if len(songs) > 0 {
		return nil
	}

	seed := []store.SongFields{
		{Title: "Roygbiv", Artist: "Boards of Canada", Album: "Music Has the Right to Children", Duration: 151},
		{Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Duration: 330},
		{Title: "Glory Box", Artist: "Portishead", Album: "Dummy", Duration: 305},
		{Title: "No Surprises", Artist: "Radiohead", Album: "OK Computer", Duration: 229},
		{Title: "Les Nuits", Artist: "Nightmares on Wax", Album: "Carboot Soul", Duration: 339},
		{Title: "Kerala", Artist: "Bonobo", Album: "Migration", Duration: 238},
		{Title: "Says", Artist: "Nils Frahm", Album: "Spaces", Duration: 490},
		{Title: "Them Changes", Artist: "Thundercat", Album: "Drunk", Duration: 187},
	}

	for _, fields := range seed {
		if _, err := dataStore.CreateSong(ctx, fields); err != nil {
			return fmt.Errorf("seed song %q: %w", fields.Title, err)
		}
	}
	logging.Info("seeded catalog with demo songs")
	return nil
}
