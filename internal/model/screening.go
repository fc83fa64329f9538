package model

import (
	"strconv"
	"time"
)

// SeatStatus enumerates the availability states a seat can be in for a
// particular screening.  Transitions between states are owned by the
// inventory engine; nothing else may flip a seat's status.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available" // seat can be claimed
	SeatReserved  SeatStatus = "reserved"  // temporary hold, expires
	SeatSold      SeatStatus = "sold"      // purchased under a booking
)

// Valid reports whether s is one of the three enumerated seat states.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatReserved, SeatSold:
		return true
	}
	return false
}

// Seat is one seat of a screening's seat map.  The ID is the row label
// concatenated with the seat number ("A5") and is unique within the
// parent screening only.
//
// Fields:
//  ID     – seat identifier, unique per screening (e.g. "A5").
//  Row    – row label ("A".."H" by default).
//  Number – seat number within the row.
//  Status – one of available, reserved, sold.
type Seat struct {
	ID     string     `json:"id"`
	Row    string     `json:"row"`
	Number uint32     `json:"number"`
	Status SeatStatus `json:"status"`
}

// Screening formats and languages as stored in the DB enums.
const (
	Format2D   = "2D"
	Format3D   = "3D"
	Format4DX  = "4DX"
	FormatIMAX = "IMAX"

	LanguageVO = "VO" // original version
	LanguageVF = "VF" // dubbed
)

// ValidFormat reports whether f is a known projection format.
func ValidFormat(f string) bool {
	switch f {
	case Format2D, Format3D, Format4DX, FormatIMAX:
		return true
	}
	return false
}

// ValidLanguage reports whether l is a known audio language option.
func ValidLanguage(l string) bool {
	return l == LanguageVO || l == LanguageVF
}

// Screening is a scheduled showing of a movie in a room of a cinema.
// It owns an ordered seat map whose status column is the single source
// of truth for availability.  The per-seat price applies screening-wide.
//
// Fields:
//  ID          – primary key identifier.
//  CinemaID    – cinema hosting the screening.
//  MovieID     – movie being shown.
//  TMDBMovieID – external TMDB identifier kept for catalog lookups.
//  RoomID      – numeric room identifier within the cinema.
//  RoomName    – display name of the room.
//  StartsAt    – when the screening begins (UTC).
//  EndsAt      – when the screening ends (UTC, after StartsAt).
//  Format      – projection format (2D, 3D, 4DX, IMAX).
//  Language    – audio option (VO or VF).
//  PriceCents  – per-seat price in cents at the current moment.
//  Seats       – the seat map, ordered by row then number.
type Screening struct {
	ID          uint64    `json:"id"`
	CinemaID    uint64    `json:"cinema_id"`
	MovieID     uint64    `json:"movie_id"`
	TMDBMovieID int64     `json:"tmdb_movie_id"`
	RoomID      uint32    `json:"room_id"`
	RoomName    string    `json:"room_name"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Format      string    `json:"format"`
	Language    string    `json:"language"`
	PriceCents  uint32    `json:"price_cents"`
	Seats       []Seat    `json:"seats,omitempty"`
}

// Seat returns the seat with the given id, or nil when the screening has
// no such seat.
func (s *Screening) Seat(id string) *Seat {
	for i := range s.Seats {
		if s.Seats[i].ID == id {
			return &s.Seats[i]
		}
	}
	return nil
}

// DefaultSeatRows and DefaultSeatsPerRow describe the standard room
// layout used when an admin creates a screening without an explicit
// seating configuration.
var DefaultSeatRows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

const DefaultSeatsPerRow = 12

// GenerateSeatMap builds the seat map for a new screening.  Positions 4
// and seatsPerRow-3 of every row are aisle gaps and get no seat, so an
// 8x12 room yields 80 seats rather than 96.  All seats start available.
func GenerateSeatMap(rows []string, seatsPerRow int) []Seat {
	if len(rows) == 0 {
		rows = DefaultSeatRows
	}
	if seatsPerRow <= 0 {
		seatsPerRow = DefaultSeatsPerRow
	}
	seats := make([]Seat, 0, len(rows)*seatsPerRow)
	for _, row := range rows {
		for n := 1; n <= seatsPerRow; n++ {
			if n == 4 || n == seatsPerRow-3 {
				continue // aisle gap
			}
			seats = append(seats, Seat{
				ID:     row + strconv.Itoa(n),
				Row:    row,
				Number: uint32(n),
				Status: SeatAvailable,
			})
		}
	}
	return seats
}
