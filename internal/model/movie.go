package model

import "time"

// Movie represents a row in the `movies` table.  Movies form the shared
// catalog: they have no owner and exist independently of any user's
// watchlist.  Category and Summary are optional columns and therefore
// pointers; a nil value maps to SQL NULL.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title used for keyword search.
//  ReleaseDate – theatrical release date; gates the watched transition.
//  Category    – optional genre/category label.
//  Summary     – optional plot summary.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Movie struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"release_date"`
	Category    *string   `json:"category,omitempty"`
	Summary     *string   `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
