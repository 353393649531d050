package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	SignUp(ctx context.Context) error
	Users(ctx context.Context) error
	RemoveUser(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	SetDate(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	AddSlot(ctx context.Context) error
	Done(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	RemoveSlot(ctx context.Context, args []string) error
	Carry(ctx context.Context) error
	History(ctx context.Context) error
	Stats(ctx context.Context) error
	Theme(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Load(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the planner CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           - show available commands
//	  - signup         - create a local account
//	  - login          - authenticate
//	  - users          - list stored accounts
//	  - rmuser <#>     - delete a stored account
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - help                - show available commands
//	  - date [YYYY-MM-DD]   - show or switch the working date
//	  - list                - list the day's slots and subtasks
//	  - add <slot#>         - add a subtask to a slot
//	  - addslot             - add a time slot
//	  - done <slot#> <#>    - toggle a subtask's completion
//	  - edit <slot#> <#>    - change a subtask's text
//	  - rm <slot#> <#>      - remove a subtask
//	  - rename <slot#>      - rename a slot
//	  - rmslot <slot#>      - remove a slot with its subtasks
//	  - carry               - merge the previous day's plan into today
//	  - history             - summarize all stored days
//	  - stats               - completion stats for the working date
//	  - theme [name]        - show or set the color theme
//	  - sync                - push everything to the server
//	  - load                - pull the server's copy
//	  - logout              - log out
//	  - exit | quit         - leave the program
//
// Any errors returned by command handlers are printed here and the loop
// continues. This keeps the REPL resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("planner %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: date, (l)ist, add, addslot, done, edit, rm, rename, rmslot, carry, history, stats, theme, sync, load, logout, exit")
			} else {
				printlnFn("Available commands: login, signup, users, rmuser, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "signup":
			err = a.SignUp(ctx)

		case "users":
			err = a.Users(ctx)

		case "rmuser":
			err = a.RemoveUser(ctx, args)

		case "date":
			err = a.SetDate(ctx, args)

		case "l", "list":
			err = a.List(ctx)

		case "add":
			err = a.Add(ctx, args)

		case "addslot":
			err = a.AddSlot(ctx)

		case "done":
			err = a.Done(ctx, args)

		case "edit":
			err = a.Edit(ctx, args)

		case "rm":
			err = a.Remove(ctx, args)

		case "rename":
			err = a.Rename(ctx, args)

		case "rmslot":
			err = a.RemoveSlot(ctx, args)

		case "carry":
			err = a.Carry(ctx)

		case "history":
			err = a.History(ctx)

		case "stats":
			err = a.Stats(ctx)

		case "theme":
			err = a.Theme(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "load":
			err = a.Load(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(err.Error())
		}
	}
}
