package model

import "time"

// Cinema is a venue hosting screenings.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the cinema.
//  Address   – street address.
//  City      – city for browse filtering.
//  CreatedAt – creation timestamp.
type Cinema struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// Movie is a catalog entry referenced by screenings.  Metadata import
// from TMDB is out of scope; rows are created by admins with whatever
// fields they have.
//
// Fields:
//  ID         – primary key identifier.
//  TMDBID     – external TMDB identifier, if known.
//  Title      – movie title.
//  PosterPath – relative poster path as served by the TMDB image CDN.
type Movie struct {
	ID         uint64 `json:"id"`
	TMDBID     int64  `json:"tmdb_id,omitempty"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
}
