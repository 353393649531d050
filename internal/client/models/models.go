// Package models defines client-side data models for the self-planner.
// JSON field names follow the storage format used by earlier versions of
// the app, so documents stored before this release keep loading.
package models

// User is a planner account. Passwords are stored and compared as
// plain text; this is a documented limitation, not an accident.
type User struct {
	// ID is an opaque identifier. Locally created users get a
	// time-derived id, server-issued users may use a different scheme.
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}

// Subtask is a single checkable item inside a time slot. Order within
// a slot is insertion order and is the display order.
type Subtask struct {
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// TimeSlot holds the subtasks of one named block of a day. The slot's
// label lives in the enclosing TimeSlotMap key, not here.
type TimeSlot struct {
	Subtasks  []Subtask `json:"subtasks"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
}

// TimeSlotMap maps a slot label to its slot. Display order is always
// recomputed from the labels (see timeutil.ParseSortKey); the map's own
// iteration order carries no meaning.
type TimeSlotMap map[string]TimeSlot

// PlannerDocument is the whole plan of one user for one calendar date.
// It is always written back wholesale on every mutation.
type PlannerDocument struct {
	Tasks       TimeSlotMap `json:"tasks"`
	LastUpdated string      `json:"lastUpdated,omitempty"`
}

// SyncPayload is the aggregate shipped to the remote service on push:
// the user record plus every known date's document keyed by date.
type SyncPayload struct {
	User    User                       `json:"user"`
	Planner map[string]PlannerDocument `json:"planner"`
}

// Stats counts subtasks across a set of slots.
type Stats struct {
	Total     int
	Completed int
}

// DaySummary is one row of the history view.
type DaySummary struct {
	Date           string
	Tasks          TimeSlotMap
	Total          int
	Completed      int
	CompletionRate int
}
