// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// created.  It carries enough context for downstream consumers to log,
// notify or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	Reference        string   `json:"booking_reference"`
	UserID           uint64   `json:"user_id"`
	ScreeningID      uint64   `json:"screening_id"`
	CinemaID         uint64   `json:"cinema_id"`
	CinemaName       string   `json:"cinema_name"`
	RoomName         string   `json:"room_name"`
	MovieTitle       string   `json:"movie_title"`
	StartsAt         string   `json:"starts_at"`
	SeatIDs          []string `json:"seats"`
	SnackCount       int      `json:"snack_count"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled before
// its screening starts, so consumers can reconcile counters.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	Reference   string   `json:"booking_reference"`
	UserID      uint64   `json:"user_id"`
	ScreeningID uint64   `json:"screening_id"`
	SeatIDs     []string `json:"seats_released"`
	CancelledAt string   `json:"cancelled_at"`
}
