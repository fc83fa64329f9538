package model

import "time"

// BookingStatus is the lifecycle state of a booking.  A booking is
// created confirmed, may move to cancelled strictly before its screening
// starts, and is presented as completed once the screening has begun.
// The completed state is inferred at display time from the screening's
// start, never written to storage.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// PaymentStatus mirrors the payment column of the bookings table.
// Payment capture happens out of band; this service records completed
// on creation and never transitions the value itself.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// SeatLine is one purchased seat inside a booking snapshot.  The price
// is the screening's per-seat price at the moment of purchase and is
// never recomputed, so later price changes cannot affect the buyer.
//
// Fields:
//  SeatID     – seat identifier within the screening ("A5").
//  Row        – row label at purchase time.
//  Number     – seat number at purchase time.
//  PriceCents – price paid for this seat, in cents.
type SeatLine struct {
	SeatID     string `json:"seat_id"`
	Row        string `json:"row"`
	Number     uint32 `json:"number"`
	PriceCents uint32 `json:"price_cents"`
}

// SnackLine is one snack entry inside a booking snapshot.  Name and
// price are copied from the catalog at purchase time.
//
// Fields:
//  SnackID    – catalog identifier of the snack.
//  Name       – snack name at purchase time.
//  Quantity   – number of units purchased, at least 1.
//  PriceCents – unit price paid, in cents.
type SnackLine struct {
	SnackID    uint64 `json:"snack_id"`
	Name       string `json:"name"`
	Quantity   uint32 `json:"quantity"`
	PriceCents uint32 `json:"price_cents"`
}

// Booking is a purchase record for one user and one screening.  The
// seat and snack lines are an immutable snapshot; availability questions
// are always answered by the screening's seat map, never by bookings.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – purchaser.
//  ScreeningID      – screening the seats belong to.
//  Seats            – immutable seat snapshot.
//  Snacks           – immutable snack snapshot, possibly empty.
//  TotalAmountCents – sum of seat prices plus snack price×quantity at
//                     creation time.
//  PaymentStatus    – pending, completed or failed.
//  Status           – confirmed, cancelled or completed.
//  Reference        – unique 8-character human-presentable code.
//  CreatedAt        – creation timestamp (UTC).
type Booking struct {
	ID               uint64        `json:"id"`
	UserID           uint64        `json:"user_id"`
	ScreeningID      uint64        `json:"screening_id"`
	Seats            []SeatLine    `json:"seats"`
	Snacks           []SnackLine   `json:"snacks"`
	TotalAmountCents uint32        `json:"total_amount_cents"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	Status           BookingStatus `json:"status"`
	Reference        string        `json:"booking_reference"`
	CreatedAt        time.Time     `json:"created_at"`
}

// SeatIDs returns the seat identifiers of the booking's snapshot, in
// snapshot order.
func (b *Booking) SeatIDs() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}

// DisplayStatus folds the implicit completed state into the persisted
// status: a confirmed booking whose screening has started reads as
// completed.  Cancelled bookings stay cancelled.
func (b *Booking) DisplayStatus(screeningStart, now time.Time) BookingStatus {
	if b.Status == BookingConfirmed && !now.Before(screeningStart) {
		return BookingCompleted
	}
	return b.Status
}
