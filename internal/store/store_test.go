package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/surfcams/internal/cams"
)

func sampleCatalog() []cams.Category {
	pipe := cams.Cam{Slug: "pipeline", Title: "Pipeline", URL: "https://cams.example/pipe.m3u8", SpotID: "5842041f4e65fad6a7708890",
		TitleColor: "#ffffff", SubtitleColor: "#ffffff", BackgroundColor: "#000000"}
	sunset := cams.Cam{Slug: "sunset", Title: "Sunset", URL: "https://cams.example/sunset.m3u8", Proxy: true,
		TitleColor: "#ffffff", SubtitleColor: "#ffffff", BackgroundColor: "#000000"}
	waimea := cams.Cam{Slug: "waimea", Title: "Waimea", Subtitle: "Bay", URL: "https://cams.example/waimea.m3u8",
		TitleColor: "#ff0000", SubtitleColor: "#00ff00", BackgroundColor: "#0000ff"}

	return []cams.Category{
		{Title: "North Shore", Color: "#123456", Cams: []cams.Cam{pipe, sunset}},
		{Title: "Favourites", Color: "#654321", Cams: []cams.Cam{waimea, pipe}},
	}
}

// eachStore runs fn against every Repository implementation.
func eachStore(t *testing.T, fn func(t *testing.T, repo cams.Repository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestEmptyStore(t *testing.T) {
	eachStore(t, func(t *testing.T, repo cams.Repository) {
		ctx := context.Background()

		cats, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if cats == nil || len(cats) != 0 {
			t.Fatalf("expected empty non-nil categories, got %#v", cats)
		}

		list, err := repo.ListCams(ctx)
		if err != nil {
			t.Fatalf("ListCams: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Fatalf("expected empty non-nil cams, got %#v", list)
		}

		if _, err := repo.GetCam(ctx, 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetCam: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.GetCamBySlug(ctx, "pipeline"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetCamBySlug: expected ErrNotFound, got %v", err)
		}
	})
}

func TestReplaceCatalogAndList(t *testing.T) {
	eachStore(t, func(t *testing.T, repo cams.Repository) {
		ctx := context.Background()
		if err := repo.ReplaceCatalog(ctx, sampleCatalog()); err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}

		cats, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if len(cats) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(cats))
		}
		if cats[0].Title != "North Shore" || cats[1].Title != "Favourites" {
			t.Fatalf("unexpected category order: %q, %q", cats[0].Title, cats[1].Title)
		}
		if cats[0].Color != "#123456" {
			t.Fatalf("expected category color kept, got %q", cats[0].Color)
		}

		gotSlugs := func(list []cams.Cam) []string {
			var out []string
			for _, c := range list {
				out = append(out, c.Slug)
			}
			return out
		}
		if s := gotSlugs(cats[0].Cams); len(s) != 2 || s[0] != "pipeline" || s[1] != "sunset" {
			t.Fatalf("unexpected North Shore cams: %v", s)
		}
		if s := gotSlugs(cats[1].Cams); len(s) != 2 || s[0] != "waimea" || s[1] != "pipeline" {
			t.Fatalf("unexpected Favourites cams: %v", s)
		}

		// The shared URL is stored once.
		if cats[0].Cams[0].ID != cats[1].Cams[1].ID {
			t.Fatalf("shared cam stored twice: ids %d and %d", cats[0].Cams[0].ID, cats[1].Cams[1].ID)
		}

		list, err := repo.ListCams(ctx)
		if err != nil {
			t.Fatalf("ListCams: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 distinct cams, got %d", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].ID >= list[i].ID {
				t.Fatalf("cams not sorted by id: %v", gotSlugs(list))
			}
		}

		waimea, err := repo.GetCamBySlug(ctx, "waimea")
		if err != nil {
			t.Fatalf("GetCamBySlug: %v", err)
		}
		if waimea.Subtitle != "Bay" || waimea.TitleColor != "#ff0000" || waimea.BackgroundColor != "#0000ff" {
			t.Fatalf("unexpected waimea fields: %+v", waimea)
		}

		byID, err := repo.GetCam(ctx, waimea.ID)
		if err != nil {
			t.Fatalf("GetCam: %v", err)
		}
		if byID.Slug != "waimea" {
			t.Fatalf("expected waimea by id, got %q", byID.Slug)
		}

		sunset, err := repo.GetCamBySlug(ctx, "sunset")
		if err != nil {
			t.Fatalf("GetCamBySlug: %v", err)
		}
		if !sunset.Proxy || sunset.SpotID != "" {
			t.Fatalf("unexpected sunset fields: %+v", sunset)
		}
	})
}

func TestReplaceCatalogDropsPrevious(t *testing.T) {
	eachStore(t, func(t *testing.T, repo cams.Repository) {
		ctx := context.Background()
		if err := repo.ReplaceCatalog(ctx, sampleCatalog()); err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}

		next := []cams.Category{{
			Title: "Europe",
			Cams:  []cams.Cam{{Slug: "nazare", Title: "Nazaré", URL: "https://cams.example/nazare.m3u8"}},
		}}
		if err := repo.ReplaceCatalog(ctx, next); err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}

		cats, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if len(cats) != 1 || cats[0].Title != "Europe" || len(cats[0].Cams) != 1 {
			t.Fatalf("unexpected catalog after replace: %+v", cats)
		}
		if _, err := repo.GetCamBySlug(ctx, "pipeline"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected old cam gone, got %v", err)
		}
	})
}

func TestUpdateOfflineSince(t *testing.T) {
	eachStore(t, func(t *testing.T, repo cams.Repository) {
		ctx := context.Background()
		if err := repo.ReplaceCatalog(ctx, sampleCatalog()); err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}

		list, err := repo.ListCams(ctx)
		if err != nil {
			t.Fatalf("ListCams: %v", err)
		}
		since := time.Date(2025, 11, 27, 8, 30, 0, 0, time.UTC)
		list[0].OfflineSince = &since
		if err := repo.UpdateOfflineSince(ctx, list); err != nil {
			t.Fatalf("UpdateOfflineSince: %v", err)
		}

		got, err := repo.GetCam(ctx, list[0].ID)
		if err != nil {
			t.Fatalf("GetCam: %v", err)
		}
		if got.OfflineSince == nil || !got.OfflineSince.Equal(since) {
			t.Fatalf("expected offline since %v, got %v", since, got.OfflineSince)
		}
		if got.Online() {
			t.Fatalf("expected cam reported offline")
		}

		other, err := repo.GetCam(ctx, list[1].ID)
		if err != nil {
			t.Fatalf("GetCam: %v", err)
		}
		if !other.Online() {
			t.Fatalf("expected untouched cam online, got %v", other.OfflineSince)
		}

		// Categories see the same state.
		cats, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if cats[0].Cams[0].Online() {
			t.Fatalf("expected category listing to carry offline state")
		}

		list[0].OfflineSince = nil
		if err := repo.UpdateOfflineSince(ctx, list[:1]); err != nil {
			t.Fatalf("UpdateOfflineSince: %v", err)
		}
		got, err = repo.GetCam(ctx, list[0].ID)
		if err != nil {
			t.Fatalf("GetCam: %v", err)
		}
		if !got.Online() {
			t.Fatalf("expected cam back online")
		}
	})
}

func TestOpenSQLiteCreatesFile(t *testing.T) {
	path := t.TempDir() + "/nested/surfcams.db"
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	ctx := context.Background()
	if err := s.ReplaceCatalog(ctx, sampleCatalog()); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	cats, err := reopened.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected catalog to persist, got %d categories", len(cats))
	}
}

func TestReplaceCatalogRepeatedURLInOneCategory(t *testing.T) {
	eachStore(t, func(t *testing.T, repo cams.Repository) {
		ctx := context.Background()
		pipe := cams.Cam{Slug: "pipeline", Title: "Pipeline", URL: "https://cams.example/pipe.m3u8"}
		other := cams.Cam{Slug: "sunset", Title: "Sunset", URL: "https://cams.example/sunset.m3u8"}

		err := repo.ReplaceCatalog(ctx, []cams.Category{
			{Title: "North Shore", Cams: []cams.Cam{pipe, other, pipe}},
		})
		if err != nil {
			t.Fatalf("ReplaceCatalog: %v", err)
		}

		cats, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		got := cats[0].Cams
		if len(got) != 2 || got[0].Slug != "pipeline" || got[1].Slug != "sunset" {
			t.Fatalf("expected pipeline listed once before sunset, got %+v", got)
		}
	})
}
