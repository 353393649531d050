package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates remote-first with a
// local fallback. On success the session user becomes the REPL user.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.user = &user
	printlnFn("Welcome back,", user.Email)
	return nil
}

// SignUp creates a local account and logs it in. The account reaches
// the server on the next sync.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.SignUp(ctx, email, password)
	if err != nil {
		return err
	}

	a.user = &user
	printlnFn("Account created for", user.Email)
	return nil
}

// Users lists the locally stored accounts, numbered for rmuser.
func (a *App) Users(ctx context.Context) error {
	users := a.store.ListUsers(ctx)
	if len(users) == 0 {
		printlnFn("No stored accounts")
		return nil
	}
	for i, u := range users {
		printlnFn(fmt.Sprintf("%d. %s", i+1, u.Email))
	}
	return nil
}

// RemoveUser deletes a stored account by its number in the users
// listing. Deleting the logged-in account also ends the session.
func (a *App) RemoveUser(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: rmuser <#>")
		return nil
	}

	users := a.store.ListUsers(ctx)
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(users) {
		return fmt.Errorf("no such account: %s", args[0])
	}

	target := users[n-1]
	if err := a.auth.RemoveAccount(ctx, target.ID); err != nil {
		return err
	}
	if a.user != nil && a.user.ID == target.ID {
		a.user = nil
	}
	printlnFn("Removed", target.Email)
	return nil
}

// Logout clears the persisted session; the account record stays.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.user = nil
	printlnFn("Logged out")
	return nil
}
