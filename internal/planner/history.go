package planner

import (
	"context"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
)

// History summarizes every stored date for the user, newest first.
// Completion rates are derived by counting; nothing here is persisted.
func History(ctx context.Context, docs DocumentStore, userID string) []models.DaySummary {
	dates := docs.ListPlannerDates(ctx, userID)

	summaries := make([]models.DaySummary, 0, len(dates))
	for _, date := range dates {
		doc := docs.PlannerDocument(ctx, userID, date)

		var st models.Stats
		for _, slot := range doc.Tasks {
			st.Total += len(slot.Subtasks)
			for _, sub := range slot.Subtasks {
				if sub.Done {
					st.Completed++
				}
			}
		}

		summaries = append(summaries, models.DaySummary{
			Date:           date,
			Tasks:          doc.Tasks,
			Total:          st.Total,
			Completed:      st.Completed,
			CompletionRate: CompletionPercent(st),
		})
	}
	return summaries
}
