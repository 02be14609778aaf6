package model

import "time"

// CategoryID uniquely identifies a word category
type CategoryID string

// Category is reference data: a named pool of guessable words.
// The core consumes categories but does not own them.
type Category struct {
	ID        CategoryID
	Name      string
	CreatedAt time.Time
}
