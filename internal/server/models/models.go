// Package models holds the server's wire and storage types. The JSON
// tags mirror the client's document format; planner day documents pass
// through as raw JSON and are never interpreted server-side.
package models

import "encoding/json"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SyncPayload is the body of a sync push: the account record plus the
// user's full planner dataset keyed by date (YYYY-MM-DD).
type SyncPayload struct {
	User    User                       `json:"user"`
	Planner map[string]json.RawMessage `json:"planner"`
}
