package services

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// Session is an authenticated user as seen by one AuthManager. Token lets
// the session be resumed after a restart.
type Session struct {
	ID         string
	User       models.User
	LoggedInAt time.Time
	Token      string
}

// UserID is a shorthand for s.User.ID.
func (s *Session) UserID() int64 {
	return s.User.ID
}
