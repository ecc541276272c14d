package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

func (a *App) printTasks(list []models.Task) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tasks found.")
		return
	}

	now := a.now()
	for i, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = models.FormatDate(*t.DueDate)
			if t.Overdue(now) {
				due += " (overdue)"
			}
		}

		fmt.Fprintf(a.out, "%2d. %s %s %s\n", i+1, statusMark(t.Status), priorityMark(t.Priority), t.Title)
		fmt.Fprintf(a.out, "    ID: %d | Status: %s | Priority: %s | Due: %s\n", t.ID, t.Status, t.Priority, due)
		if t.Description != "" {
			fmt.Fprintf(a.out, "    %s\n", t.Description)
		}
	}
	fmt.Fprintf(a.out, "%d task(s)\n", len(list))
}

func statusMark(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "[x]"
	case models.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func priorityMark(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "!!!"
	case models.PriorityMedium:
		return "!! "
	default:
		return "!  "
	}
}

// describe turns service errors into messages for the user. Validation
// errors keep their detail; the rest get a fixed wording.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, common.ErrAuthenticationFailed):
		return "invalid username or password"
	case errors.Is(err, common.ErrUnauthenticated):
		return "please log in first"
	case errors.Is(err, common.ErrPermissionDenied):
		return "permission denied"
	case errors.Is(err, common.ErrDuplicateUsername):
		return "this username is already taken"
	case errors.Is(err, common.ErrNotFound):
		return "task not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, common.ErrStoreUnavailable):
		return "database is unavailable, try again later"
	default:
		return err.Error()
	}
}
