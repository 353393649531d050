// Package planner implements the task-tree operations for one user's
// plan of one calendar date. Every mutation updates the in-memory slot
// map and immediately writes the whole document back through storage;
// there is no batching and no partial update, so the last writer of a
// date always wins wholesale.
package planner

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/timeutil"
)

// DefaultSlot is presented with every plan even when nothing is stored
// under it. It is a read-time view entry and is only persisted once
// the user actually puts something in it.
const DefaultSlot = "Morning Study (6:00 AM - 8:00 AM)"

// Plan owns the slot map of one (user, date) pair.
type Plan struct {
	userID string
	date   string
	tasks  models.TimeSlotMap
	docs   DocumentStore
	now    func() time.Time
}

// DocumentStore is the slice of the persistence layer the planner
// needs: whole-document reads and writes plus the date index.
type DocumentStore interface {
	PlannerDocument(ctx context.Context, userID, date string) models.PlannerDocument
	SavePlannerDocument(ctx context.Context, userID, date string, doc models.PlannerDocument) error
	ListPlannerDates(ctx context.Context, userID string) []string
}

// Load reads the stored document for (userID, date) and returns a Plan
// positioned on it. A date with nothing stored yields an empty plan.
func Load(ctx context.Context, docs DocumentStore, userID, date string) *Plan {
	doc := docs.PlannerDocument(ctx, userID, date)
	tasks := doc.Tasks
	if tasks == nil {
		tasks = models.TimeSlotMap{}
	}
	return &Plan{
		userID: userID,
		date:   date,
		tasks:  tasks,
		docs:   docs,
		now:    time.Now,
	}
}

func (p *Plan) Date() string { return p.date }

// Tasks exposes the current slot map. Callers must treat it as
// read-only; mutations go through the methods below.
func (p *Plan) Tasks() models.TimeSlotMap { return p.tasks }

func (p *Plan) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}

// save writes the whole document back, stamping lastUpdated.
func (p *Plan) save(ctx context.Context) error {
	doc := p.docs.PlannerDocument(ctx, p.userID, p.date)
	doc.Tasks = p.tasks
	doc.LastUpdated = p.timestamp()
	return p.docs.SavePlannerDocument(ctx, p.userID, p.date, doc)
}

// AddSubtask appends an unchecked subtask to the slot, creating the
// slot when it does not exist yet.
func (p *Plan) AddSubtask(ctx context.Context, slotLabel, text string) error {
	slot := p.tasks[slotLabel]
	slot.Subtasks = append(slot.Subtasks, models.Subtask{
		Text:      text,
		Done:      false,
		CreatedAt: p.timestamp(),
	})
	p.tasks[slotLabel] = slot
	return p.save(ctx)
}

// ToggleSubtaskDone flips the done flag of the subtask at index.
// Index validity is the caller's precondition.
func (p *Plan) ToggleSubtaskDone(ctx context.Context, slotLabel string, index int) error {
	slot := p.tasks[slotLabel]
	slot.Subtasks[index].Done = !slot.Subtasks[index].Done
	slot.UpdatedAt = p.timestamp()
	p.tasks[slotLabel] = slot
	return p.save(ctx)
}

// EditSubtaskText replaces the text of the subtask at index, keeping
// its done state.
func (p *Plan) EditSubtaskText(ctx context.Context, slotLabel string, index int, newText string) error {
	slot := p.tasks[slotLabel]
	slot.Subtasks[index].Text = newText
	slot.UpdatedAt = p.timestamp()
	p.tasks[slotLabel] = slot
	return p.save(ctx)
}

// DeleteSubtask removes the subtask at index, shifting later ones.
func (p *Plan) DeleteSubtask(ctx context.Context, slotLabel string, index int) error {
	slot := p.tasks[slotLabel]
	slot.Subtasks = append(slot.Subtasks[:index], slot.Subtasks[index+1:]...)
	slot.UpdatedAt = p.timestamp()
	p.tasks[slotLabel] = slot
	return p.save(ctx)
}

// RenameSlot moves a slot's content under a new label. A slot already
// stored under newLabel is overwritten, matching the delete-and-
// reinsert contract of the label being the slot's only identity.
func (p *Plan) RenameSlot(ctx context.Context, oldLabel, newLabel string) error {
	if oldLabel == newLabel {
		return nil
	}
	if slot, ok := p.tasks[oldLabel]; ok {
		slot.UpdatedAt = p.timestamp()
		p.tasks[newLabel] = slot
		delete(p.tasks, oldLabel)
	}
	return p.save(ctx)
}

// DeleteSlot removes the slot entirely.
func (p *Plan) DeleteSlot(ctx context.Context, label string) error {
	delete(p.tasks, label)
	return p.save(ctx)
}

// EnsureSlot creates an empty slot under label unless one exists.
func (p *Plan) EnsureSlot(ctx context.Context, label string) error {
	if _, ok := p.tasks[label]; ok {
		return nil
	}
	p.tasks[label] = models.TimeSlot{Subtasks: []models.Subtask{}}
	return p.save(ctx)
}

// MergePreviousPlan copies another date's plan into this one. Slots
// absent here are copied verbatim; for slots present in both, only
// subtasks whose text does not already occur in the current slot are
// appended, in their original relative order. Duplicate detection is
// by exact text alone, so a completed and an uncompleted subtask with
// the same text count as the same item and the current one is kept.
func (p *Plan) MergePreviousPlan(ctx context.Context, fromDate string) error {
	previous := p.docs.PlannerDocument(ctx, p.userID, fromDate)

	for label, prevSlot := range previous.Tasks {
		current, ok := p.tasks[label]
		if !ok {
			p.tasks[label] = prevSlot
			continue
		}

		seen := make(map[string]struct{}, len(current.Subtasks))
		for _, st := range current.Subtasks {
			seen[st.Text] = struct{}{}
		}
		for _, st := range prevSlot.Subtasks {
			if _, dup := seen[st.Text]; dup {
				continue
			}
			seen[st.Text] = struct{}{}
			current.Subtasks = append(current.Subtasks, st)
		}
		p.tasks[label] = current
	}

	return p.save(ctx)
}

// OrderedSlotLabels returns the default slot plus every slot in the
// plan, deduplicated and ordered by their time-of-day sort key.
// Labels without a recognizable time sort last, keeping their
// relative order.
func (p *Plan) OrderedSlotLabels() []string {
	labels := make([]string, 0, len(p.tasks)+1)
	labels = append(labels, DefaultSlot)
	for label := range p.tasks {
		if label != DefaultSlot {
			labels = append(labels, label)
		}
	}
	// map iteration order is random; fix it before the stable sort so
	// equal keys come out deterministically
	sort.Strings(labels[1:])
	sort.SliceStable(labels, func(i, j int) bool {
		return timeutil.ParseSortKey(labels[i]) < timeutil.ParseSortKey(labels[j])
	})
	return labels
}

// Stats counts subtasks across all slots of the plan.
func (p *Plan) Stats() models.Stats {
	var st models.Stats
	for _, slot := range p.tasks {
		st.Total += len(slot.Subtasks)
		for _, sub := range slot.Subtasks {
			if sub.Done {
				st.Completed++
			}
		}
	}
	return st
}

// CompletionPercent derives the completion rate of st, 0 for an empty
// plan rather than a division by zero.
func CompletionPercent(st models.Stats) int {
	if st.Total == 0 {
		return 0
	}
	return int(float64(st.Completed)/float64(st.Total)*100 + 0.5)
}
