package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/larder/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var memo, deadline sql.NullString
	var updatedAt sql.NullTime
	var purchased int

	err := scanner.Scan(
		&item.ID, &item.Name, &item.Quantity, &item.Stock, &memo,
		&item.Category, &item.Priority, &deadline, &purchased,
		&item.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Purchased = purchased != 0
	if memo.Valid {
		item.Memo = &memo.String
	}
	if deadline.Valid {
		item.Deadline = &deadline.String
	}
	if updatedAt.Valid {
		item.UpdatedAt = &updatedAt.Time
	}
	return &item, nil
}

const itemCols = `id, name, quantity, stock, memo, category, priority, deadline, purchased, created_at, updated_at`

// sortColumns is the allow-list for ORDER BY; client-supplied sort keys
// never reach the query as raw identifiers.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"deadline":  "deadline",
	"priority":  "priority",
	"name":      "name",
	"stock":     "stock",
}

const priorityRankExpr = `CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 END`

// Filter holds the raw query parameters of the list endpoint. All
// fields are optional; empty string means "not supplied".
type Filter struct {
	Search    string
	Category  string
	Priority  string
	Purchased string
	Sort      string
	Order     string
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Create inserts a validated item, applying the documented defaults for
// any omitted field. The name is trimmed before storage.
func (s *ItemStore) Create(in model.ItemInput) (*model.Item, error) {
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	quantity := model.DefaultQuantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	stock := model.DefaultStock
	if in.Stock != nil {
		stock = *in.Stock
	}
	category := model.DefaultCategory
	if in.Category != nil {
		category = *in.Category
	}
	priority := model.DefaultPriority
	if in.Priority != nil {
		priority = *in.Priority
	}

	result, err := s.db.Exec(
		`INSERT INTO items (name, quantity, stock, memo, category, priority, deadline) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, quantity, stock, nullable(in.Memo), category, priority, nullable(in.Deadline),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// List returns the filtered, sorted collection. Filters are conjunctive;
// unknown sort keys fall back to created_at and unknown orders to DESC.
func (s *ItemStore) List(f Filter) ([]model.Item, error) {
	q := sq.Select(itemCols).From("items")

	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where(sq.Or{sq.Like{"name": like}, sq.Like{"memo": like}})
	}
	if f.Category != "" && f.Category != "all" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Priority != "" && f.Priority != "all" {
		q = q.Where(sq.Eq{"priority": f.Priority})
	}
	if f.Purchased != "" && f.Purchased != "all" {
		purchased := 0
		if f.Purchased == "true" {
			purchased = 1
		}
		q = q.Where(sq.Eq{"purchased": purchased})
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	if col == "priority" {
		q = q.OrderBy(priorityRankExpr + " " + dir)
	} else {
		q = q.OrderBy(col + " " + dir)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update merges the supplied fields over the stored row and refreshes
// updated_at. Returns (nil, nil) if the id does not exist; omitted
// fields keep their stored values.
func (s *ItemStore) Update(id int64, in model.ItemInput) (*model.Item, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	name := existing.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	quantity := existing.Quantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	stock := existing.Stock
	if in.Stock != nil {
		stock = *in.Stock
	}
	memo := toNullString(existing.Memo)
	if in.Memo != nil {
		memo = nullable(in.Memo)
	}
	category := existing.Category
	if in.Category != nil {
		category = *in.Category
	}
	priority := existing.Priority
	if in.Priority != nil {
		priority = *in.Priority
	}
	deadline := toNullString(existing.Deadline)
	if in.Deadline != nil {
		deadline = nullable(in.Deadline)
	}
	purchased := existing.Purchased
	if in.Purchased != nil {
		purchased = *in.Purchased
	}

	_, err = s.db.Exec(
		`UPDATE items SET name = ?, quantity = ?, stock = ?, memo = ?, category = ?, priority = ?, deadline = ?, purchased = ?, updated_at = ? WHERE id = ?`,
		name, quantity, stock, memo, category, priority, deadline, boolToInt(purchased), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Stats recomputes every aggregate from scratch; nothing is cached.
func (s *ItemStore) Stats() (*model.Stats, error) {
	var stats model.Stats

	counts := []struct {
		dst   *int
		query string
	}{
		{&stats.Total, `SELECT COUNT(*) FROM items`},
		{&stats.Purchased, `SELECT COUNT(*) FROM items WHERE purchased = 1`},
		{&stats.LowStock, `SELECT COUNT(*) FROM items WHERE stock <= 1 AND purchased = 0`},
		{&stats.Urgent, `SELECT COUNT(*) FROM items WHERE deadline IS NOT NULL AND deadline <= date('now', '+3 days') AND purchased = 0`},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count items: %w", err)
		}
	}
	stats.Remaining = stats.Total - stats.Purchased

	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM items GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc model.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.Query(`SELECT priority, COUNT(*) FROM items WHERE purchased = 0 GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var pc model.PriorityCount
		if err := prows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		stats.ByPriority = append(stats.ByPriority, pc)
	}
	return &stats, prows.Err()
}

// Ping verifies the store is reachable, for the health endpoint.
func (s *ItemStore) Ping() error {
	var one int
	if err := s.db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// Clear removes all items. Test isolation only.
func (s *ItemStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM items`)
	if err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	return nil
}

// nullable maps an absent or empty optional string to NULL, so blank
// memos and deadlines are stored the same way as omitted ones.
func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
