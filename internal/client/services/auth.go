// Package services contains the planner client's application services:
// session establishment (auth) and best-effort remote sync. Services
// sit between the CLI and the storage/api layers and own the workflow
// rules; they hold no UI state.
package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/client/storage"
)

var (
	// ErrMissingFields is returned when email or password is empty.
	ErrMissingFields = errors.New("please fill in all fields")

	// ErrInvalidCredentials deliberately does not distinguish "wrong
	// password" from "backend unreachable and not known locally".
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken rejects signup for an already-registered email.
	ErrEmailTaken = errors.New("email already exists")

	// ErrNotLoggedIn guards operations that need a session.
	ErrNotLoggedIn = errors.New("no user logged in")
)

// RemoteAuthenticator is the slice of the API client the auth workflow
// uses.
type RemoteAuthenticator interface {
	Login(ctx context.Context, email, password string) (models.User, error)
}

// AuthService establishes and tears down the session. Login is
// remote-first with a local fallback; signup is local-only.
type AuthService struct {
	remote RemoteAuthenticator
	store  *storage.Store
	now    func() time.Time
}

func NewAuthService(remote RemoteAuthenticator, store *storage.Store) *AuthService {
	return &AuthService{remote: remote, store: store, now: time.Now}
}

// Login tries the remote service first; a remote success establishes
// the session and backfills the local user collection when the account
// is unknown locally. Any remote failure falls through to an exact
// local email+password lookup.
func (a *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	if user, err := a.remote.Login(ctx, email, password); err == nil {
		if a.store.FindUser(ctx, user.Email, user.Password) == nil {
			_ = a.store.AppendUser(ctx, user)
		}
		if err := a.store.SetSession(ctx, user); err != nil {
			return models.User{}, err
		}
		return user, nil
	}

	user := a.store.FindUser(ctx, email, password)
	if user == nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := a.store.SetSession(ctx, *user); err != nil {
		return models.User{}, err
	}
	return *user, nil
}

// SignUp creates a local account and sessions it. The remote service
// is never involved; accounts reach it on the next sync push.
func (a *AuthService) SignUp(ctx context.Context, email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}
	for _, u := range a.store.ListUsers(ctx) {
		if u.Email == email {
			return models.User{}, ErrEmailTaken
		}
	}

	user, err := a.store.SaveUser(ctx, models.User{
		Email:     email,
		Password:  password,
		CreatedAt: a.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return models.User{}, err
	}
	if err := a.store.SetSession(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Restore loads the persisted session at startup. Records written by
// very old releases may lack an id; those get a fresh time-derived id
// backfilled into both the session and the user collection.
func (a *AuthService) Restore(ctx context.Context) *models.User {
	user := a.store.Session(ctx)
	if user == nil {
		return nil
	}

	if user.ID == "" {
		user.ID = strconv.FormatInt(a.now().UnixMilli(), 10)
		_ = a.store.SetSession(ctx, *user)
		_ = a.store.UpdateUser(ctx, *user)
	}
	return user
}

// Logout clears the session; the user record itself stays.
func (a *AuthService) Logout(ctx context.Context) error {
	return a.store.ClearSession(ctx)
}

// RemoveAccount deletes a stored user record (and the session, when it
// belongs to that user).
func (a *AuthService) RemoveAccount(ctx context.Context, id string) error {
	return a.store.RemoveUser(ctx, id)
}
