package repository

import (
	"time"

	"github.com/paraggit/reportportal-llm-query/entity"
)

type SessionRepository interface {
	Create(session *entity.Session) error
	Get(sessionID string) (*entity.Session, error)
	Touch(sessionID string, at time.Time) error
	AddHistory(history *entity.SessionHistory) error
	ListHistory(sessionID string, limit int) ([]*entity.SessionHistory, error)
	// TrimHistory deletes all but the newest keep entries for a session.
	TrimHistory(sessionID string, keep int) error
	// DeleteIdleSince removes sessions (and their history) whose last
	// activity is before cutoff. Returns the number of sessions removed.
	DeleteIdleSince(cutoff time.Time) (int64, error)
}
