package model

import "time"

// HoldTTL is how long a temporary seat hold keeps a seat reserved
// before the expiry sweep returns it to available.
const HoldTTL = 5 * time.Minute

// SeatHold is a temporary claim on one seat of a screening while a user
// walks through checkout.  The matching seat carries status reserved
// for the lifetime of the hold; the sweep deletes expired rows and
// frees their seats.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user holding the seat.
//  ScreeningID – screening the seat belongs to.
//  SeatID      – held seat ("A5").
//  Token       – opaque token returned to the client.
//  ExpiresAt   – when the hold lapses.
//  CreatedAt   – when the hold was taken.
type SeatHold struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	ScreeningID uint64    `json:"screening_id"`
	SeatID      string    `json:"seat_id"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
