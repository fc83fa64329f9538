// Package pricing computes booking totals.  All amounts are integer
// cents; floats never enter the money path, and sums are carried in
// uint64 so no cart a client can submit wraps 32-bit arithmetic.
package pricing

import (
	"fmt"

	"github.com/mycine/api/internal/model"
)

// Total sums the seat lines and snack lines of a booking in cents.
// Seat lines carry the per-seat price captured at claim time, snack
// lines the catalog price at purchase time times quantity.
func Total(seats []model.SeatLine, snacks []model.SnackLine) uint64 {
	var total uint64
	for _, s := range seats {
		total += uint64(s.PriceCents)
	}
	for _, s := range snacks {
		total += uint64(s.PriceCents) * uint64(s.Quantity)
	}
	return total
}

// FormatCents renders an amount in cents as a decimal string, e.g.
// 950 -> "9.50".  Used only for display and event payloads.
func FormatCents(cents uint64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
