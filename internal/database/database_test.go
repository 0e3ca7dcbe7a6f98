package database

import "testing"

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A row inserted with only the original columns picks up the
	// defaults of the later-added ones.
	if _, err := db.Exec(`INSERT INTO items (name) VALUES ('legacy')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var stock int
	var category, priority string
	err = db.QueryRow(`SELECT stock, category, priority FROM items WHERE name = 'legacy'`).
		Scan(&stock, &category, &priority)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if stock != 0 {
		t.Errorf("stock = %d, want 0", stock)
	}
	if category != "other" {
		t.Errorf("category = %q, want other", category)
	}
	if priority != "medium" {
		t.Errorf("priority = %q, want medium", priority)
	}
}

func TestOpenBadPath(t *testing.T) {
	if _, err := Open("/nonexistent-dir/items.db"); err == nil {
		t.Error("expected error for unwritable path")
	}
}
