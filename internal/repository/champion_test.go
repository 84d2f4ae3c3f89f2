package repository

import (
	"context"
	"errors"
	"testing"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

func TestChampionUpsertBatchReSeeds(t *testing.T) {
	db := newTestDB(t)
	repo := NewChampionRepository(db, zerolog.Nop())
	ctx := context.Background()

	seed := []domain.Champion{
		{ChampionID: 103, ChampionKey: "Ahri", Name: "Ahri", Title: "the Nine-Tailed Fox", ImageURL: "https://cdn/Ahri.png"},
		{ChampionID: 268, ChampionKey: "Azir", Name: "Azir", Title: "the Emperor of the Sands", ImageURL: "https://cdn/Azir.png"},
	}
	if err := repo.UpsertBatch(ctx, seed); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	seed[0].ImageURL = "https://cdn/15.1/Ahri.png"
	if err := repo.UpsertBatch(ctx, seed); err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("re-seed duplicated rows: count = %d, want 2", n)
	}

	ahri, err := repo.GetByID(ctx, 103)
	if err != nil {
		t.Fatal(err)
	}
	if ahri.ImageURL != "https://cdn/15.1/Ahri.png" {
		t.Errorf("image url not updated on re-seed: %s", ahri.ImageURL)
	}
}

func TestChampionIconURLUnknownChampion(t *testing.T) {
	db := newTestDB(t)
	repo := NewChampionRepository(db, zerolog.Nop())
	ctx := context.Background()

	if url := repo.IconURL(ctx, 9999); url != nil {
		t.Errorf("unknown champion should resolve to nil icon, got %q", *url)
	}
	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
