package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// runStoreTests exercises any Store implementation
func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := &Reader{
		ID:           "rdr_1",
		MerchantCode: "MC1",
		Name:         "front desk",
		Status:       ReaderStatusPaired,
		Device:       Device{Identifier: "dev-1", Model: "solo"},
		Meta:         map[string]any{"till": "1"},
		CreatedAt:    now,
		UpdatedAt:    now,
		Online:       true,
	}
	second := &Reader{
		ID:           "rdr_2",
		MerchantCode: "MC1",
		Status:       ReaderStatusPaired,
		Device:       Device{Identifier: "dev-2", Model: "solo"},
		CreatedAt:    now.Add(time.Second),
		UpdatedAt:    now.Add(time.Second),
	}

	t.Run("Create", func(t *testing.T) {
		if err := s.CreateReader(ctx, first); err != nil {
			t.Fatalf("CreateReader failed: %v", err)
		}
		if err := s.CreateReader(ctx, second); err != nil {
			t.Fatalf("CreateReader failed: %v", err)
		}
		if err := s.CreateReader(ctx, first); !errors.Is(err, ErrReaderExists) {
			t.Errorf("Expected ErrReaderExists, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		readers, err := s.ListReaders(ctx, "MC1")
		if err != nil {
			t.Fatalf("ListReaders failed: %v", err)
		}
		if len(readers) != 2 || readers[0].ID != "rdr_1" || readers[1].ID != "rdr_2" {
			t.Fatalf("Unexpected readers %+v", readers)
		}

		other, err := s.ListReaders(ctx, "MC2")
		if err != nil {
			t.Fatalf("ListReaders failed: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("Expected no readers for another merchant, got %d", len(other))
		}
	})

	t.Run("GetAndUpdate", func(t *testing.T) {
		r, err := s.GetReader(ctx, "MC1", "rdr_1")
		if err != nil {
			t.Fatalf("GetReader failed: %v", err)
		}
		if r.Name != "front desk" || r.Meta["till"] != "1" || !r.Online {
			t.Errorf("Unexpected reader %+v", r)
		}

		r.Name = "back office"
		r.PendingCheckout = "tx-1"
		if err := s.UpdateReader(ctx, r); err != nil {
			t.Fatalf("UpdateReader failed: %v", err)
		}

		got, _ := s.GetReader(ctx, "MC1", "rdr_1")
		if got.Name != "back office" || got.PendingCheckout != "tx-1" {
			t.Errorf("Update not stored: %+v", got)
		}

		if _, err := s.GetReader(ctx, "MC2", "rdr_1"); !errors.Is(err, ErrReaderNotFound) {
			t.Errorf("Expected ErrReaderNotFound for another merchant, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.DeleteReader(ctx, "MC1", "rdr_2"); err != nil {
			t.Fatalf("DeleteReader failed: %v", err)
		}
		if err := s.DeleteReader(ctx, "MC1", "rdr_2"); !errors.Is(err, ErrReaderNotFound) {
			t.Errorf("Expected ErrReaderNotFound, got %v", err)
		}
		if err := s.UpdateReader(ctx, second); !errors.Is(err, ErrReaderNotFound) {
			t.Errorf("Expected ErrReaderNotFound on update, got %v", err)
		}
	})
}

func TestMemory(t *testing.T) {
	runStoreTests(t, NewMemory())
}

func TestMemory_CopiesMeta(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	meta := map[string]any{"a": 1}
	s.CreateReader(ctx, &Reader{ID: "r", MerchantCode: "M", Meta: meta})

	meta["a"] = 2
	got, _ := s.GetReader(ctx, "M", "r")
	if got.Meta["a"] != 1 {
		t.Errorf("Store shares meta with caller")
	}

	got.Meta["a"] = 3
	again, _ := s.GetReader(ctx, "M", "r")
	if again.Meta["a"] != 1 {
		t.Errorf("Store leaks meta to caller")
	}
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("SANDBOX_TEST_DSN")
	if dsn == "" {
		t.Skip("SANDBOX_TEST_DSN not set")
	}

	db, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := db.CleanData(); err != nil {
		t.Fatalf("CleanData failed: %v", err)
	}
	defer db.CleanData()

	runStoreTests(t, db)
}
