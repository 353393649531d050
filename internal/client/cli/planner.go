package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/services"
	"github.com/dmitrijs2005/selfplanner/internal/planner"
)

// requireLogin guards commands that operate on the session user's data.
func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return services.ErrNotLoggedIn
	}
	return nil
}

// slotLabel resolves a 1-based slot number from the list output to its
// label on the working date's plan.
func slotLabel(p *planner.Plan, arg string) (string, error) {
	labels := p.OrderedSlotLabels()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(labels) {
		return "", fmt.Errorf("no such slot: %s", arg)
	}
	return labels[n-1], nil
}

// SetDate shows the working date or switches it to args[0].
func (a *App) SetDate(_ context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Working date:", a.date)
		return nil
	}
	if _, err := time.Parse(dateLayout, args[0]); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
	}
	a.date = args[0]
	return nil
}

// List prints the working date's slots in chronological order with
// their numbered subtasks.
func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	p := a.plan(ctx)
	for i, label := range p.OrderedSlotLabels() {
		printlnFn(fmt.Sprintf("%d. %s", i+1, label))
		for j, st := range p.Tasks()[label].Subtasks {
			mark := " "
			if st.Done {
				mark = "x"
			}
			printlnFn(fmt.Sprintf("   %d. [%s] %s", j+1, mark, st.Text))
		}
	}
	return nil
}

// Add appends a subtask to the slot numbered args[0], prompting for the
// text.
func (a *App) Add(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		printlnFn("Usage: add <slot#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}

	text, err := getSimpleText(a.reader, "Enter task", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return p.AddSubtask(ctx, label, text)
}

// AddSlot prompts for a label and creates an empty time slot.
func (a *App) AddSlot(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	label, err := getSimpleText(a.reader, "Enter slot label, e.g. Evening (6:00 PM - 8:00 PM)", os.Stdout)
	if err != nil {
		return err
	}
	if label == "" {
		return nil
	}
	return a.plan(ctx).EnsureSlot(ctx, label)
}

// Done toggles completion of subtask args[1] in slot args[0].
func (a *App) Done(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) < 2 {
		printlnFn("Usage: done <slot#> <task#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}
	idx, err := subtaskIndex(p, label, args[1])
	if err != nil {
		return err
	}
	return p.ToggleSubtaskDone(ctx, label, idx)
}

// Edit replaces the text of subtask args[1] in slot args[0].
func (a *App) Edit(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) < 2 {
		printlnFn("Usage: edit <slot#> <task#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}
	idx, err := subtaskIndex(p, label, args[1])
	if err != nil {
		return err
	}

	text, err := getSimpleText(a.reader, "Enter new text", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return p.EditSubtaskText(ctx, label, idx, text)
}

// Remove deletes subtask args[1] from slot args[0].
func (a *App) Remove(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) < 2 {
		printlnFn("Usage: rm <slot#> <task#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}
	idx, err := subtaskIndex(p, label, args[1])
	if err != nil {
		return err
	}
	return p.DeleteSubtask(ctx, label, idx)
}

// Rename changes the label of slot args[0], prompting for the new one.
func (a *App) Rename(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		printlnFn("Usage: rename <slot#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}

	newLabel, err := getSimpleText(a.reader, "Enter new label", os.Stdout)
	if err != nil {
		return err
	}
	if newLabel == "" {
		return nil
	}
	return p.RenameSlot(ctx, label, newLabel)
}

// RemoveSlot deletes slot args[0] together with its subtasks.
func (a *App) RemoveSlot(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		printlnFn("Usage: rmslot <slot#>")
		return nil
	}

	p := a.plan(ctx)
	label, err := slotLabel(p, args[0])
	if err != nil {
		return err
	}
	return p.DeleteSlot(ctx, label)
}

// Carry merges the previous day's plan into the working date. Existing
// subtasks with the same text are kept once.
func (a *App) Carry(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	day, err := time.Parse(dateLayout, a.date)
	if err != nil {
		return err
	}
	fromDate := day.AddDate(0, 0, -1).Format(dateLayout)

	if err := a.plan(ctx).MergePreviousPlan(ctx, fromDate); err != nil {
		return err
	}
	printlnFn("Merged", fromDate, "into", a.date)
	return nil
}

// History prints a completion summary for every stored day, newest
// first.
func (a *App) History(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	summaries := planner.History(ctx, a.store, a.user.ID)
	if len(summaries) == 0 {
		printlnFn("No stored days")
		return nil
	}
	for _, s := range summaries {
		printlnFn(fmt.Sprintf("%s  %d/%d done (%d%%)", s.Date, s.Completed, s.Total, s.CompletionRate))
	}
	return nil
}

// Stats prints completion figures for the working date.
func (a *App) Stats(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	st := a.plan(ctx).Stats()
	printlnFn(fmt.Sprintf("%s: %d/%d done (%d%%)", a.date, st.Completed, st.Total, planner.CompletionPercent(st)))
	return nil
}

// subtaskIndex resolves a 1-based subtask number to its slice index.
func subtaskIndex(p *planner.Plan, label, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(p.Tasks()[label].Subtasks) {
		return 0, fmt.Errorf("no such task: %s", arg)
	}
	return n - 1, nil
}
