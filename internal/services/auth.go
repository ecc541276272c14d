package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/repositories/users"
	"github.com/google/uuid"
)

// AuthManager owns the current session. It is Anonymous until Login or
// Resume succeeds and returns to Anonymous on Logout. The task cache is
// loaded on login and discarded on logout.
type AuthManager struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	tasks          *TaskService
	log            logging.Logger
	jwtSecret      []byte
	sessionTTL     time.Duration
	minPasswordLen int
	hashParams     cryptox.Params
	now            func() time.Time

	dummyOnce sync.Once
	dummyHash string

	mu      sync.RWMutex
	session *Session
}

func NewAuthManager(db *sql.DB, m repomanager.RepositoryManager, tasks *TaskService, log logging.Logger, cfg *config.Config) *AuthManager {
	return &AuthManager{
		db:             db,
		repomanager:    m,
		tasks:          tasks,
		log:            log,
		jwtSecret:      []byte(cfg.SecretKey),
		sessionTTL:     cfg.SessionTTL,
		minPasswordLen: cfg.PasswordMinLength,
		hashParams:     cryptox.DefaultParams,
		now:            time.Now,
	}
}

func (s *AuthManager) users() users.Repository {
	return s.repomanager.Users(s.db)
}

func (s *AuthManager) newUser(username string, password []byte, email string, admin bool) (*models.User, error) {
	name, err := models.ValidateUserName(username)
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(password, s.minPasswordLen); err != nil {
		return nil, err
	}
	email, err = models.ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	return &models.User{
		UserName:     name,
		PasswordHash: cryptox.HashPassword(password, s.hashParams),
		Email:        email,
		IsAdmin:      admin,
	}, nil
}

// Register creates a regular account. It does not log the user in.
func (s *AuthManager) Register(ctx context.Context, username string, password []byte, email string) (models.User, error) {
	user, err := s.newUser(username, password, email, false)
	if err != nil {
		return models.User{}, err
	}

	user, err = s.users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return models.User{}, err
		}
		return models.User{}, s.storeErr(ctx, "create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.Profile(), nil
}

// SeedAdmin creates the bootstrap administrator unless an administrator
// already exists. It reports whether an account was created.
func (s *AuthManager) SeedAdmin(ctx context.Context, username string, password []byte) (bool, error) {
	admin, err := s.newUser(username, password, "", true)
	if err != nil {
		return false, err
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		n, err := repo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		if _, err := repo.Create(ctx, admin); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return false, err
		}
		return false, s.storeErr(ctx, "seed admin", err)
	}

	if created {
		s.log.Info(ctx, "bootstrap admin created", "user_id", admin.ID)
	}
	return created, nil
}

// Login checks the credentials, loads the user's tasks and makes the new
// session current, replacing any previous one. Unknown users and wrong
// passwords both yield ErrAuthenticationFailed after the same amount of
// hashing work.
func (s *AuthManager) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	user, err := s.users().GetByUserName(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = cryptox.VerifyPassword(password, s.dummy())
			s.log.Info(ctx, "login failed")
			return nil, common.ErrAuthenticationFailed
		}
		return nil, s.storeErr(ctx, "get user", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrAuthenticationFailed
	}
	if !ok {
		s.log.Info(ctx, "login failed", "user_id", user.ID)
		return nil, common.ErrAuthenticationFailed
	}

	sessionID := uuid.NewString()
	token, err := auth.GenerateToken(user.ID, sessionID, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return s.start(ctx, &Session{ID: sessionID, User: user.Profile(), LoggedInAt: s.now(), Token: token})
}

// Resume restores a session from a token issued by an earlier Login.
func (s *AuthManager) Resume(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}

	user, err := s.users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthenticationFailed
		}
		return nil, s.storeErr(ctx, "get user", err)
	}

	return s.start(ctx, &Session{ID: claims.ID, User: user.Profile(), LoggedInAt: s.now(), Token: token})
}

// start loads the task cache for session and then publishes it. If the load
// fails the manager ends up Anonymous.
func (s *AuthManager) start(ctx context.Context, session *Session) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tasks.LoadFor(ctx, session); err != nil {
		s.session = nil
		s.tasks.Discard()
		return nil, err
	}

	s.session = session
	s.log.Info(ctx, "user logged in", "session_id", session.ID, "user_id", session.UserID())

	out := *session
	return &out, nil
}

// Logout ends the current session. Without a session it does nothing.
func (s *AuthManager) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}

	s.log.Info(ctx, "user logged out", "session_id", s.session.ID, "user_id", s.session.UserID())
	s.session = nil
	s.tasks.Discard()
}

// CurrentUser returns the logged-in user, if any.
func (s *AuthManager) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return models.User{}, false
	}
	return s.session.User, true
}

// CurrentSession returns a copy of the current session, if any.
func (s *AuthManager) CurrentSession() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// ListUsers returns every account profile. Only administrators may call it.
func (s *AuthManager) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if session == nil {
		return nil, common.ErrUnauthenticated
	}
	if !session.User.IsAdmin {
		s.log.Warn(ctx, "user list denied", "session_id", session.ID, "user_id", session.UserID())
		return nil, common.ErrPermissionDenied
	}

	list, err := s.users().List(ctx)
	if err != nil {
		return nil, s.storeErr(ctx, "list users", err)
	}

	out := make([]models.User, len(list))
	for i, u := range list {
		out[i] = u.Profile()
	}
	return out, nil
}

func (s *AuthManager) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash = cryptox.DummyHash(s.hashParams)
	})
	return s.dummyHash
}

func (s *AuthManager) storeErr(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return wrapStoreErr(op, err)
}
