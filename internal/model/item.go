package model

import "time"

// Categories and priorities are fixed sets; anything else is rejected
// by validation before it reaches the store.
var (
	Categories = []string{"food", "daily", "drink", "snack", "frozen", "other"}
	Priorities = []string{"high", "medium", "low"}
)

const (
	DefaultCategory = "other"
	DefaultPriority = "medium"
	DefaultQuantity = 1
	DefaultStock    = 0
)

// PriorityRank orders priorities for sorting: ascending yields
// high before medium before low, not alphabetical order.
var PriorityRank = map[string]int{
	"high":   1,
	"medium": 2,
	"low":    3,
}

type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Stock     int        `json:"stock"`
	Memo      *string    `json:"memo"`
	Category  string     `json:"category"`
	Priority  string     `json:"priority"`
	Deadline  *string    `json:"deadline"`
	Purchased bool       `json:"purchased"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// ItemInput is the request body for create and update. Pointer fields
// distinguish "omitted" from "supplied": on update, nil means keep the
// stored value.
type ItemInput struct {
	Name      *string `json:"name"`
	Quantity  *int    `json:"quantity"`
	Stock     *int    `json:"stock"`
	Memo      *string `json:"memo"`
	Category  *string `json:"category"`
	Priority  *string `json:"priority"`
	Deadline  *string `json:"deadline"`
	Purchased *bool   `json:"purchased"`
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Stats is the aggregate view over the whole collection, computed
// fresh per request.
type Stats struct {
	Total      int             `json:"total"`
	Purchased  int             `json:"purchased"`
	Remaining  int             `json:"remaining"`
	LowStock   int             `json:"lowStock"`
	Urgent     int             `json:"urgent"`
	ByCategory []CategoryCount `json:"byCategory"`
	ByPriority []PriorityCount `json:"byPriority"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}
