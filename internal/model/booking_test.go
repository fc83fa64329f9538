package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayStatus(t *testing.T) {
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	b := &Booking{Status: BookingConfirmed}
	assert.Equal(t, BookingConfirmed, b.DisplayStatus(start, start.Add(-time.Second)))
	assert.Equal(t, BookingCompleted, b.DisplayStatus(start, start))
	assert.Equal(t, BookingCompleted, b.DisplayStatus(start, start.Add(2*time.Hour)))

	cancelled := &Booking{Status: BookingCancelled}
	assert.Equal(t, BookingCancelled, cancelled.DisplayStatus(start, start.Add(2*time.Hour)))
}

func TestBookingSeatIDs(t *testing.T) {
	b := &Booking{Seats: []SeatLine{
		{SeatID: "A1"}, {SeatID: "A2"}, {SeatID: "B5"},
	}}
	assert.Equal(t, []string{"A1", "A2", "B5"}, b.SeatIDs())

	empty := &Booking{}
	assert.Empty(t, empty.SeatIDs())
}
