// Package models defines the persisted entities of the program store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an opaque identity row. The system never verifies identity; it only
// partitions data by user ID.
type User struct {
	ID          int
	Login       string
	DisplayName string
	CreatedAt   time.Time
	LastSeen    time.Time
}

// Program is an ordered set of exercises assigned to one weekday for one user.
// At most one program per (user, day) is ever active; the storage layer
// permits duplicate rows so "overwrite" can insert a fresh one, and the
// newest row wins.
type Program struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	DayName   string    `json:"day_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Exercise is one entry in a program. Position is a dense zero-based ordering
// key within the program; Weight == 0 means "no added weight".
type Exercise struct {
	ID        uuid.UUID `json:"id"`
	ProgramID uuid.UUID `json:"program_id"`
	Name      string    `json:"name"`
	Reps      int       `json:"reps"`
	Sets      int       `json:"sets"`
	Weight    float64   `json:"weight"`
	MediaRef  string    `json:"media_ref,omitempty"`
	Position  int       `json:"position"`
}

// Session is one playback of a program. CurrentIndex is the zero-based
// pointer into the program's ordered exercise list; CurrentIndex equal to
// the exercise count denotes completion. At most one open session exists
// per user.
type Session struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"user_id"`
	ProgramID    uuid.UUID `json:"program_id"`
	CurrentIndex int       `json:"current_index"`
	StartedAt    time.Time `json:"started_at"`
	Closed       bool      `json:"closed"`
}

// Settings holds per-user playback preferences, materialized lazily with
// defaults on first read.
type Settings struct {
	UserID      int `json:"user_id"`
	RestSeconds int `json:"rest_seconds"`
}

// DefaultRestSeconds is the rest interval applied before a user ever touches
// their settings.
const DefaultRestSeconds = 60

// Weekdays lists the seven fixed day labels the builder offers, in display
// order.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// ValidDay reports whether name is one of the seven weekday labels.
func ValidDay(name string) bool {
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}
