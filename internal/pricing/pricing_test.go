package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mycine/api/internal/model"
)

func TestTotal(t *testing.T) {
	seats := []model.SeatLine{
		{SeatID: "A1", PriceCents: 950},
		{SeatID: "A2", PriceCents: 950},
		{SeatID: "A3", PriceCents: 950},
	}
	snacks := []model.SnackLine{
		{Name: "popcorn", Quantity: 2, PriceCents: 500},
		{Name: "soda", Quantity: 1, PriceCents: 300},
	}

	assert.Equal(t, uint64(2850), Total(seats, nil))
	assert.Equal(t, uint64(1300), Total(nil, snacks))
	assert.Equal(t, uint64(4150), Total(seats, snacks))
	assert.Equal(t, uint64(0), Total(nil, nil))
}

func TestTotalLargeQuantities(t *testing.T) {
	// A quantity times price beyond 32 bits must sum exactly, not wrap.
	seats := []model.SeatLine{{SeatID: "A1", PriceCents: 950}}
	snacks := []model.SnackLine{{Name: "popcorn", Quantity: 8_589_935, PriceCents: 500}}
	assert.Equal(t, uint64(4_294_968_450), Total(seats, snacks))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "9.50", FormatCents(950))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "41.50", FormatCents(4150))
}
