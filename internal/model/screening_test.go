package model

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeatMapDefaultLayout(t *testing.T) {
	seats := GenerateSeatMap(nil, 0)

	// 8 rows of 12 positions minus the two aisle gaps per row.
	require.Len(t, seats, 80)
	assert.Equal(t, "A1", seats[0].ID)
	assert.Equal(t, "A", seats[0].Row)
	assert.Equal(t, uint32(1), seats[0].Number)

	for _, s := range seats {
		assert.NotEqual(t, uint32(4), s.Number, "position 4 is an aisle gap")
		assert.NotEqual(t, uint32(9), s.Number, "position 9 is an aisle gap")
		assert.Equal(t, SeatAvailable, s.Status)
		assert.Equal(t, s.Row+strconv.Itoa(int(s.Number)), s.ID)
	}
}

func TestGenerateSeatMapCustomLayout(t *testing.T) {
	seats := GenerateSeatMap([]string{"A", "B"}, 6)

	// Positions 4 and 3 are gaps with 6 seats per row, so each row has
	// seats 1, 2, 5 and 6.
	require.Len(t, seats, 8)
	assert.Equal(t, "A1", seats[0].ID)
	assert.Equal(t, "A2", seats[1].ID)
	assert.Equal(t, "A5", seats[2].ID)
	assert.Equal(t, "A6", seats[3].ID)
	assert.Equal(t, "B1", seats[4].ID)
}

func TestScreeningSeatLookup(t *testing.T) {
	sc := &Screening{Seats: GenerateSeatMap(nil, 0)}

	seat := sc.Seat("C7")
	require.NotNil(t, seat)
	assert.Equal(t, "C", seat.Row)
	assert.Equal(t, uint32(7), seat.Number)

	assert.Nil(t, sc.Seat("C4"), "aisle gap position has no seat")
	assert.Nil(t, sc.Seat("Z1"))
}

func TestSeatStatusValid(t *testing.T) {
	assert.True(t, SeatAvailable.Valid())
	assert.True(t, SeatReserved.Valid())
	assert.True(t, SeatSold.Valid())
	assert.False(t, SeatStatus("held").Valid())
	assert.False(t, SeatStatus("").Valid())
}

func TestValidFormatAndLanguage(t *testing.T) {
	assert.True(t, ValidFormat(FormatIMAX))
	assert.False(t, ValidFormat("5D"))
	assert.True(t, ValidLanguage(LanguageVF))
	assert.False(t, ValidLanguage("EN"))
}
