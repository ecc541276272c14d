package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	if _, err := models.ValidateTitle(title); err != nil {
		return err
	}

	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	in := models.NewTask{Title: title, Description: description}

	due, err := getSimpleText(a.reader, "Due date (YYYY-MM-DD, optional)", a.out)
	if err != nil {
		return err
	}
	if due != "" {
		d, err := models.ParseDate(due)
		if err != nil {
			return err
		}
		in.DueDate = &d
	}

	priority, err := getSimpleText(a.reader, "Priority (Low/Medium/High) [Medium]", a.out)
	if err != nil {
		return err
	}
	if priority != "" {
		p, err := models.ParsePriority(priority)
		if err != nil {
			return err
		}
		in.Priority = models.Some(p)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	task, err := a.tasks.Add(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added task %d.\n", task.ID)
	return nil
}

// List prints the tasks matching the key=value filters in args.
func (a *App) List(ctx context.Context, args []string) error {
	filter, err := parseFilter(args)
	if err != nil {
		return err
	}

	list, err := a.tasks.List(filter)
	if err != nil {
		return err
	}

	a.printTasks(list)
	return nil
}

// parseFilter understands status=, priority=, from=, to= and due= (a single
// day, shorthand for from=X to=X).
func parseFilter(args []string) (models.TaskFilter, error) {
	var f models.TaskFilter

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return f, fmt.Errorf("%w: filter %q must look like key=value", common.ErrInvalidInput, arg)
		}

		key = strings.ToLower(key)

		switch key {
		case "status":
			s, err := models.ParseStatus(value)
			if err != nil {
				return f, err
			}
			f.Status = &s

		case "priority":
			p, err := models.ParsePriority(value)
			if err != nil {
				return f, err
			}
			f.Priority = &p

		case "from", "to", "due", "due_date":
			d, err := models.ParseDate(value)
			if err != nil {
				return f, err
			}
			if key != "to" {
				f.DueFrom = &d
			}
			if key != "from" {
				f.DueTo = &d
			}

		default:
			return f, fmt.Errorf("%w: unknown filter %q", common.ErrInvalidInput, key)
		}
	}

	return f, f.Validate()
}

func (a *App) Update(ctx context.Context, args []string) error {
	id, err := taskIDArg(args)
	if err != nil {
		return err
	}
	task, err := a.tasks.Get(id)
	if errors.Is(err, common.ErrNotFound) {
		// the cache holds only our own tasks; an empty update asks the
		// service whether the id is foreign or missing
		callCtx, cancel := a.withTimeout(ctx)
		_, err = a.tasks.Update(callCtx, id, models.TaskUpdate{})
		cancel()
		if err == nil {
			err = common.ErrNotFound
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Press Enter to keep the current value.")
	var upd models.TaskUpdate

	if v, ok, err := GetOptional(a.reader, "Title", task.Title, a.out); err != nil {
		return err
	} else if ok {
		upd.Title = models.Some(v)
	}

	if v, ok, err := GetOptional(a.reader, "Description ('-' clears)", task.Description, a.out); err != nil {
		return err
	} else if ok {
		upd.Description = models.Some(clearable(v))
	}

	current := ""
	if task.DueDate != nil {
		current = models.FormatDate(*task.DueDate)
	}
	if v, ok, err := GetOptional(a.reader, "Due date ('-' clears)", current, a.out); err != nil {
		return err
	} else if ok {
		if v == "-" {
			upd.DueDate = models.Some[*time.Time](nil)
		} else {
			d, err := models.ParseDate(v)
			if err != nil {
				return err
			}
			upd.DueDate = models.Some(&d)
		}
	}

	if v, ok, err := GetOptional(a.reader, "Priority (Low/Medium/High)", string(task.Priority), a.out); err != nil {
		return err
	} else if ok {
		p, err := models.ParsePriority(v)
		if err != nil {
			return err
		}
		upd.Priority = models.Some(p)
	}

	if v, ok, err := GetOptional(a.reader, "Status (Pending/In Progress/Completed)", string(task.Status), a.out); err != nil {
		return err
	} else if ok {
		s, err := models.ParseStatus(v)
		if err != nil {
			return err
		}
		upd.Status = models.Some(s)
	}

	if upd.Empty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	updated, err := a.tasks.Update(ctx, id, upd)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Updated:", updated)
	return nil
}

func clearable(v string) string {
	if v == "-" {
		return ""
	}
	return v
}

func (a *App) Complete(ctx context.Context, args []string) error {
	id, err := taskIDArg(args)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	task, err := a.tasks.Complete(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Task %d %q completed.\n", task.ID, task.Title)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := taskIDArg(args)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Delete task %d?", id)
	if task, err := a.tasks.Get(id); err == nil {
		prompt = fmt.Sprintf("Delete task %d %q?", id, task.Title)
	}
	ok, err := Confirm(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.tasks.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Task %d deleted.\n", id)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	keyword := strings.Join(args, " ")
	if keyword == "" {
		var err error
		if keyword, err = getSimpleText(a.reader, "Keyword", a.out); err != nil {
			return err
		}
	}

	list, err := a.tasks.Search(keyword)
	if err != nil {
		return err
	}

	a.printTasks(list)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	stats, err := a.tasks.Statistics()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Task statistics")
	fmt.Fprintf(a.out, "  Total:         %d\n", stats.Total)
	for _, s := range models.Statuses {
		fmt.Fprintf(a.out, "  %-14s %d\n", string(s)+":", stats.ByStatus[s])
	}
	for _, p := range models.Priorities {
		fmt.Fprintf(a.out, "  %-14s %d\n", string(p)+" priority:", stats.ByPriority[p])
	}
	fmt.Fprintf(a.out, "  Overdue:       %d\n", stats.Overdue)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.tasks.Refresh(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Tasks reloaded.")
	return nil
}

func taskIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one task id", common.ErrInvalidInput)
	}
	return models.ParseTaskID(args[0])
}
