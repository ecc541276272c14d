package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
)

// AuthService is the part of services.AuthManager the CLI uses.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte, email string) (models.User, error)
	Login(ctx context.Context, username string, password []byte) (*services.Session, error)
	Resume(ctx context.Context, token string) (*services.Session, error)
	Logout(ctx context.Context)
	CurrentUser() (models.User, bool)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TaskService is the part of services.TaskService the CLI uses.
type TaskService interface {
	Add(ctx context.Context, in models.NewTask) (models.Task, error)
	Update(ctx context.Context, id int64, upd models.TaskUpdate) (models.Task, error)
	Complete(ctx context.Context, id int64) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Get(id int64) (models.Task, error)
	List(filter models.TaskFilter) ([]models.Task, error)
	Search(keyword string) ([]models.Task, error)
	Statistics() (models.Statistics, error)
	Refresh(ctx context.Context) error
}

type App struct {
	auth        AuthService
	tasks       TaskService
	log         logging.Logger
	sessionFile string
	timeout     time.Duration
	reader      *bufio.Reader
	out         io.Writer
	now         func() time.Time
}

func NewApp(auth AuthService, tasks TaskService, log logging.Logger, cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		auth:        auth,
		tasks:       tasks,
		log:         log,
		sessionFile: cfg.SessionFile,
		timeout:     cfg.RequestTimeout,
		reader:      bufio.NewReader(in),
		out:         out,
		now:         time.Now,
	}
}

// Run resumes a remembered session if there is one and then serves the
// REPL until EOF, exit or ctx cancellation.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to taskkeeper (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.auth.CurrentUser()
	return ok
}

func (a *App) status() string {
	if u, ok := a.auth.CurrentUser(); ok {
		return "(" + u.UserName + ")"
	}
	return ""
}

// withTimeout bounds a single service call.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *App) resume(ctx context.Context) {
	if a.sessionFile == "" {
		return
	}

	token, err := filex.ReadPrivate(a.sessionFile)
	if err != nil {
		a.log.Warn(ctx, "session file unreadable", "path", a.sessionFile, "error", err)
		return
	}
	if token == "" {
		return
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.auth.Resume(callCtx, token)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationFailed) {
			a.forget(ctx)
		}
		a.log.Info(ctx, "session not resumed", "error", err)
		return
	}
	fmt.Fprintf(a.out, "Welcome back, %s!\n", sess.User.UserName)
}

func (a *App) remember(ctx context.Context, token string) {
	if a.sessionFile == "" {
		return
	}
	if err := filex.WritePrivate(a.sessionFile, []byte(token+"\n")); err != nil {
		a.log.Warn(ctx, "session not saved", "path", a.sessionFile, "error", err)
	}
}

func (a *App) forget(ctx context.Context) {
	if a.sessionFile == "" {
		return
	}
	if err := filex.Remove(a.sessionFile); err != nil {
		a.log.Warn(ctx, "session file not removed", "path", a.sessionFile, "error", err)
	}
}
