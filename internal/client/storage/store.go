package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/dbx"
)

// Storage keys. These match the key scheme earlier releases used in
// the browser's local storage, so imported data keeps working.
const (
	usersKey     = "planner-users"
	sessionKey   = "planner-current-user"
	plannerKey   = "planner-" // planner-<userId>-<date>
	lastSyncKey  = "lastSyncTime"
	themeKey     = "theme"
	keySeparator = "-"
)

// Store exposes the planner's persistence operations over the local
// key-value database: the user collection, the current session, and
// one whole document per (user, date).
//
// Every read tolerates missing or malformed stored JSON and degrades
// to an empty default; reads never fail. Documents are always written
// back wholesale, there are no field-level updates.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) kv() KV {
	return NewSQLiteKV(s.db)
}

// getJSON unmarshals the value at key into out. Absent keys, storage
// errors and malformed JSON all leave out untouched and return false.
func getJSON(ctx context.Context, kv KV, key string, out any) bool {
	raw, err := kv.Get(ctx, key)
	if err != nil || raw == nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func setJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, raw)
}

// ListUsers returns the stored user collection in insertion order.
func (s *Store) ListUsers(ctx context.Context) []models.User {
	var users []models.User
	getJSON(ctx, s.kv(), usersKey, &users)
	return users
}

// SaveUser assigns a fresh time-derived id, appends the user to the
// collection and persists it, returning the stored record.
func (s *Store) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = strconv.FormatInt(s.now().UnixMilli(), 10)

	users := append(s.ListUsers(ctx), user)
	if err := setJSON(ctx, s.kv(), usersKey, users); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// AppendUser persists a user record as-is (id already assigned, e.g.
// by the server). Used to backfill the local collection after a
// remote login.
func (s *Store) AppendUser(ctx context.Context, user models.User) error {
	users := append(s.ListUsers(ctx), user)
	return setJSON(ctx, s.kv(), usersKey, users)
}

// UpdateUser replaces the stored record with the same email, if any.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	users := s.ListUsers(ctx)
	for i := range users {
		if users[i].Email == user.Email {
			users[i] = user
		}
	}
	return setJSON(ctx, s.kv(), usersKey, users)
}

// FindUser returns the stored user matching both email and password
// exactly, or nil.
func (s *Store) FindUser(ctx context.Context, email, password string) *models.User {
	for _, u := range s.ListUsers(ctx) {
		if u.Email == email && u.Password == password {
			u := u
			return &u
		}
	}
	return nil
}

// RemoveUser filters the user out of the collection. If the removed
// user is the current session, the session is cleared too; both writes
// happen in one transaction.
func (s *Store) RemoveUser(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := NewSQLiteKV(tx)

		var users []models.User
		getJSON(ctx, kv, usersKey, &users)

		kept := users[:0]
		for _, u := range users {
			if u.ID != id {
				kept = append(kept, u)
			}
		}
		if err := setJSON(ctx, kv, usersKey, kept); err != nil {
			return err
		}

		var current models.User
		if getJSON(ctx, kv, sessionKey, &current) && current.ID == id {
			return kv.Delete(ctx, sessionKey)
		}
		return nil
	})
}

// Session returns the currently authenticated user, or nil.
func (s *Store) Session(ctx context.Context) *models.User {
	var user models.User
	if !getJSON(ctx, s.kv(), sessionKey, &user) || user.Email == "" {
		return nil
	}
	return &user
}

func (s *Store) SetSession(ctx context.Context, user models.User) error {
	return setJSON(ctx, s.kv(), sessionKey, user)
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.kv().Delete(ctx, sessionKey)
}

func plannerDocKey(userID, date string) string {
	return plannerKey + userID + keySeparator + date
}

// PlannerDocument returns the stored document for (userID, date), or
// an empty document when none is stored. Tasks is never nil.
func (s *Store) PlannerDocument(ctx context.Context, userID, date string) models.PlannerDocument {
	var doc models.PlannerDocument
	getJSON(ctx, s.kv(), plannerDocKey(userID, date), &doc)
	if doc.Tasks == nil {
		doc.Tasks = models.TimeSlotMap{}
	}
	return doc
}

// SavePlannerDocument overwrites the whole document for (userID, date).
func (s *Store) SavePlannerDocument(ctx context.Context, userID, date string, doc models.PlannerDocument) error {
	return setJSON(ctx, s.kv(), plannerDocKey(userID, date), doc)
}

// ListPlannerDates returns every date with a stored document for the
// user, newest first (ISO dates sort chronologically).
func (s *Store) ListPlannerDates(ctx context.Context, userID string) []string {
	prefix := plannerKey + userID + keySeparator
	keys, err := s.kv().Keys(ctx, prefix)
	if err != nil {
		return nil
	}

	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		dates = append(dates, strings.TrimPrefix(key, prefix))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// LastSync returns the wall-clock time of the last successful push, or
// the zero time when none is recorded.
func (s *Store) LastSync(ctx context.Context) time.Time {
	raw, err := s.kv().Get(ctx, lastSyncKey)
	if err != nil || raw == nil {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	return s.kv().Set(ctx, lastSyncKey, []byte(strconv.FormatInt(t.UnixMilli(), 10)))
}

// Theme returns the stored theme identifier, or "" when unset.
func (s *Store) Theme(ctx context.Context) string {
	raw, err := s.kv().Get(ctx, themeKey)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	return s.kv().Set(ctx, themeKey, []byte(theme))
}
