package model

import (
	"fmt"
	"time"
)

// Type distinguishes money coming in from money going out. It is shared by
// categories and transactions.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return t == Income || t == Expense }

// ParseType converts user input to a Type. The empty string is allowed and
// means "any".
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "", Income, Expense:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown type %q (want income or expense)", s)
}

// Display defaults used when a category is missing or a draft is new.
const (
	DefaultCategoryColor = "#FF6B6B"
	DefaultCategoryIcon  = "📦"
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "#000000"
)

// Category buckets transactions. A nil UserID marks a system category,
// which is shared and read-only.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	UserID    *string   `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsSystem reports whether c is system-provided.
func (c Category) IsSystem() bool { return c.UserID == nil }

// Label renders the icon and name together.
func (c Category) Label() string {
	if c.Icon == "" {
		return c.Name
	}
	return c.Icon + " " + c.Name
}
