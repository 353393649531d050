package cli

import (
	"context"
	"fmt"
)

// Sync pushes the session user's full dataset to the server. A push
// inside the cooldown window is reported, not retried.
func (a *App) Sync(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.sync.Push(ctx); err != nil {
		return err
	}
	printlnFn("Synced")
	return nil
}

// Load pulls the server's copy and overwrites the matching local days.
func (a *App) Load(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	n, err := a.sync.Pull(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Loaded %d day(s)", n))
	return nil
}

// Theme shows or sets the persisted color theme.
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		theme := a.store.Theme(ctx)
		if theme == "" {
			theme = "light"
		}
		printlnFn("Theme:", theme)
		return nil
	}
	return a.store.SetTheme(ctx, args[0])
}
