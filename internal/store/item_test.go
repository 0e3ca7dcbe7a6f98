package store

import (
	"testing"
	"time"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/model"
)

func setupItemTestDB(t *testing.T) *ItemStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewItemStore(db)
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaults(t *testing.T) {
	s := setupItemTestDB(t)

	item, err := s.Create(model.ItemInput{Name: ptr("  milk  ")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if item.Name != "milk" {
		t.Errorf("name = %q, want %q (trimmed)", item.Name, "milk")
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", item.Quantity)
	}
	if item.Stock != 0 {
		t.Errorf("stock = %d, want 0", item.Stock)
	}
	if item.Category != "other" {
		t.Errorf("category = %q, want %q", item.Category, "other")
	}
	if item.Priority != "medium" {
		t.Errorf("priority = %q, want %q", item.Priority, "medium")
	}
	if item.Memo != nil {
		t.Errorf("memo = %v, want nil", *item.Memo)
	}
	if item.Deadline != nil {
		t.Errorf("deadline = %v, want nil", *item.Deadline)
	}
	if item.Purchased {
		t.Error("purchased = true, want false")
	}
	if item.CreatedAt.IsZero() {
		t.Error("createdAt should be set on creation")
	}
	if item.UpdatedAt != nil {
		t.Errorf("updatedAt = %v, want nil before first update", item.UpdatedAt)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	s := setupItemTestDB(t)

	created, err := s.Create(model.ItemInput{
		Name:     ptr("bread"),
		Quantity: ptr(2),
		Stock:    ptr(1),
		Memo:     ptr("whole wheat"),
		Category: ptr("food"),
		Priority: ptr("high"),
		Deadline: ptr("2025-01-15"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.Name != "bread" || got.Quantity != 2 || got.Stock != 1 {
		t.Errorf("got %q/%d/%d, want bread/2/1", got.Name, got.Quantity, got.Stock)
	}
	if got.Memo == nil || *got.Memo != "whole wheat" {
		t.Errorf("memo = %v, want whole wheat", got.Memo)
	}
	if got.Category != "food" || got.Priority != "high" {
		t.Errorf("category/priority = %q/%q, want food/high", got.Category, got.Priority)
	}
	if got.Deadline == nil || *got.Deadline != "2025-01-15" {
		t.Errorf("deadline = %v, want 2025-01-15", got.Deadline)
	}
}

func TestGetMissing(t *testing.T) {
	s := setupItemTestDB(t)

	item, err := s.GetByID(12345)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing id, got %+v", item)
	}
}

func TestListFilterCategory(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(model.ItemInput{Name: ptr("apples"), Category: ptr("food")})
	s.Create(model.ItemInput{Name: ptr("soap"), Category: ptr("daily")})
	s.Create(model.ItemInput{Name: ptr("rice"), Category: ptr("food")})

	items, err := s.List(Filter{Category: "food"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Category != "food" {
			t.Errorf("category = %q, want food", item.Category)
		}
	}

	// "all" disables the filter
	items, _ = s.List(Filter{Category: "all"})
	if len(items) != 3 {
		t.Errorf("category=all: len = %d, want 3", len(items))
	}

	// No matches yields the empty set, not an error
	items, err = s.List(Filter{Category: "snack"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestListFilterPurchased(t *testing.T) {
	s := setupItemTestDB(t)

	a, _ := s.Create(model.ItemInput{Name: ptr("eggs")})
	s.Create(model.ItemInput{Name: ptr("flour")})
	if _, err := s.Update(a.ID, model.ItemInput{Purchased: ptr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, err := s.List(Filter{Purchased: "true"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "eggs" {
		t.Errorf("purchased=true: got %+v, want just eggs", items)
	}

	// Anything other than "true" coerces to false
	items, _ = s.List(Filter{Purchased: "no"})
	if len(items) != 1 || items[0].Name != "flour" {
		t.Errorf("purchased=no: got %+v, want just flour", items)
	}

	items, _ = s.List(Filter{Purchased: "all"})
	if len(items) != 2 {
		t.Errorf("purchased=all: len = %d, want 2", len(items))
	}
}

func TestListSearch(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(model.ItemInput{Name: ptr("orange juice")})
	s.Create(model.ItemInput{Name: ptr("cereal"), Memo: ptr("the one with oranges")})
	s.Create(model.ItemInput{Name: ptr("butter")})

	items, err := s.List(Filter{Search: " orange "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (name and memo matches)", len(items))
	}

	items, _ = s.List(Filter{Search: "anchovies"})
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestListSortPriorityRank(t *testing.T) {
	s := setupItemTestDB(t)

	// Insertion and alphabetical order both disagree with rank order
	s.Create(model.ItemInput{Name: ptr("aspirin"), Priority: ptr("low")})
	s.Create(model.ItemInput{Name: ptr("bananas"), Priority: ptr("high")})
	s.Create(model.ItemInput{Name: ptr("candles"), Priority: ptr("medium")})

	items, err := s.List(Filter{Sort: "priority", Order: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"high", "medium", "low"}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, p := range want {
		if items[i].Priority != p {
			t.Errorf("items[%d].Priority = %q, want %q", i, items[i].Priority, p)
		}
	}

	items, _ = s.List(Filter{Sort: "priority", Order: "desc"})
	for i, p := range []string{"low", "medium", "high"} {
		if items[i].Priority != p {
			t.Errorf("desc items[%d].Priority = %q, want %q", i, items[i].Priority, p)
		}
	}
}

func TestListSortByName(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(model.ItemInput{Name: ptr("zucchini")})
	s.Create(model.ItemInput{Name: ptr("apples")})

	items, err := s.List(Filter{Sort: "name", Order: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Name != "apples" || items[1].Name != "zucchini" {
		t.Errorf("got %q, %q; want apples, zucchini", items[0].Name, items[1].Name)
	}

	// Unknown sort keys and orders fall back to created_at DESC
	// without erroring.
	if _, err := s.List(Filter{Sort: "nonsense", Order: "sideways"}); err != nil {
		t.Errorf("fallback sort: %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	s := setupItemTestDB(t)

	created, _ := s.Create(model.ItemInput{
		Name:     ptr("coffee"),
		Quantity: ptr(3),
		Memo:     ptr("dark roast"),
		Category: ptr("drink"),
	})

	updated, err := s.Update(created.ID, model.ItemInput{Priority: ptr("high")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Priority != "high" {
		t.Errorf("priority = %q, want high", updated.Priority)
	}
	if updated.Name != "coffee" {
		t.Errorf("name = %q, want coffee (unchanged)", updated.Name)
	}
	if updated.Quantity != 3 {
		t.Errorf("quantity = %d, want 3 (unchanged)", updated.Quantity)
	}
	if updated.Memo == nil || *updated.Memo != "dark roast" {
		t.Errorf("memo = %v, want dark roast (unchanged)", updated.Memo)
	}
	if updated.Category != "drink" {
		t.Errorf("category = %q, want drink (unchanged)", updated.Category)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("updatedAt should be refreshed on update")
	}
	if time.Since(*updated.UpdatedAt) > time.Minute {
		t.Errorf("updatedAt = %v, want recent", updated.UpdatedAt)
	}
}

func TestUpdateTrimsName(t *testing.T) {
	s := setupItemTestDB(t)

	created, _ := s.Create(model.ItemInput{Name: ptr("tea")})
	updated, err := s.Update(created.ID, model.ItemInput{Name: ptr("  green tea  ")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "green tea" {
		t.Errorf("name = %q, want %q", updated.Name, "green tea")
	}
}

func TestUpdateMissing(t *testing.T) {
	s := setupItemTestDB(t)

	item, err := s.Update(999, model.ItemInput{Name: ptr("ghost")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing id, got %+v", item)
	}

	items, _ := s.List(Filter{})
	if len(items) != 0 {
		t.Errorf("store should be unchanged, found %d items", len(items))
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := setupItemTestDB(t)

	created, _ := s.Create(model.ItemInput{Name: ptr("napkins")})

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.GetByID(created.ID)
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// Deleting again is not an error
	if err := s.Delete(created.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestStatsLowStock(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(model.ItemInput{Name: ptr("a"), Stock: ptr(0)})
	s.Create(model.ItemInput{Name: ptr("b"), Stock: ptr(5)})
	s.Create(model.ItemInput{Name: ptr("c"), Stock: ptr(1)})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.LowStock != 2 {
		t.Errorf("lowStock = %d, want 2", stats.LowStock)
	}
}

func TestStatsAggregates(t *testing.T) {
	s := setupItemTestDB(t)

	soon := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	far := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	a, _ := s.Create(model.ItemInput{Name: ptr("milk"), Category: ptr("drink"), Priority: ptr("high"), Deadline: ptr(soon)})
	s.Create(model.ItemInput{Name: ptr("bread"), Category: ptr("food"), Priority: ptr("high"), Deadline: ptr(far)})
	s.Create(model.ItemInput{Name: ptr("soap"), Category: ptr("daily")})
	s.Update(a.ID, model.ItemInput{Purchased: ptr(true)})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Purchased != 1 {
		t.Errorf("purchased = %d, want 1", stats.Purchased)
	}
	if stats.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", stats.Remaining)
	}
	// milk's deadline is near but it is purchased; bread's is far off
	if stats.Urgent != 0 {
		t.Errorf("urgent = %d, want 0", stats.Urgent)
	}

	byCategory := map[string]int{}
	for _, cc := range stats.ByCategory {
		byCategory[cc.Category] = cc.Count
	}
	if byCategory["drink"] != 1 || byCategory["food"] != 1 || byCategory["daily"] != 1 {
		t.Errorf("byCategory = %v", byCategory)
	}

	// Priority breakdown covers unpurchased items only
	byPriority := map[string]int{}
	for _, pc := range stats.ByPriority {
		byPriority[pc.Priority] = pc.Count
	}
	if byPriority["high"] != 1 || byPriority["medium"] != 1 {
		t.Errorf("byPriority = %v", byPriority)
	}
}

func TestStatsUrgent(t *testing.T) {
	s := setupItemTestDB(t)

	soon := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	s.Create(model.ItemInput{Name: ptr("cake"), Deadline: ptr(soon)})
	s.Create(model.ItemInput{Name: ptr("salt")})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Urgent != 1 {
		t.Errorf("urgent = %d, want 1", stats.Urgent)
	}
}

func TestClear(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(model.ItemInput{Name: ptr("one")})
	s.Create(model.ItemInput{Name: ptr("two")})

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, _ := s.List(Filter{})
	if len(items) != 0 {
		t.Errorf("len = %d after clear, want 0", len(items))
	}
}
