package model

// Snack is a catalog item sold alongside tickets.  Bookings snapshot
// the name and price at purchase time, so catalog edits never rewrite
// history.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  PriceCents  – current unit price in cents.
//  Image       – optional image URL.
//  Category    – grouping used by the storefront (popcorn, drinks, ...).
//  Description – optional longer text.
//  InStock     – whether the snack can currently be purchased.
type Snack struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	InStock     bool   `json:"in_stock"`
}
