package xormimplement

import (
	"fmt"
	"time"

	"xorm.io/builder"

	"github.com/paraggit/reportportal-llm-query/entity"
	"github.com/paraggit/reportportal-llm-query/repository"
)

type SessionRepository struct {
	session *Session
}

func NewSessionRepository(session *Session) repository.SessionRepository {
	return &SessionRepository{session: session}
}

func (r *SessionRepository) Create(s *entity.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := r.session.Table(entity.TableNameSession).Insert(s)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	s := &entity.Session{}
	has, err := r.session.Table(entity.TableNameSession).
		Where(builder.Eq{entity.SessionFieldID: sessionID}).
		Get(s)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !has {
		return nil, nil
	}
	return s, nil
}

func (r *SessionRepository) Touch(sessionID string, at time.Time) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	_, err := r.session.Table(entity.TableNameSession).
		Where(builder.Eq{entity.SessionFieldID: sessionID}).
		Update(map[string]interface{}{
			entity.SessionFieldLastActive: at,
		})
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) AddHistory(h *entity.SessionHistory) error {
	if h == nil || h.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	_, err := r.session.Table(entity.TableNameSessionHistory).Insert(h)
	if err != nil {
		return fmt.Errorf("failed to insert session history: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListHistory(sessionID string, limit int) ([]*entity.SessionHistory, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	var histories []*entity.SessionHistory
	q := r.session.Table(entity.TableNameSessionHistory).
		Where(builder.Eq{entity.SessionHistoryFieldSessionID: sessionID}).
		Desc(entity.SessionHistoryFieldCreatedAt)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&histories); err != nil {
		return nil, fmt.Errorf("failed to list session history: %w", err)
	}

	// stored newest-first; return oldest-first for conversational order
	for i, j := 0, len(histories)-1; i < j; i, j = i+1, j-1 {
		histories[i], histories[j] = histories[j], histories[i]
	}
	return histories, nil
}

func (r *SessionRepository) TrimHistory(sessionID string, keep int) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if keep <= 0 {
		return nil
	}

	var ids []int64
	if err := r.session.Table(entity.TableNameSessionHistory).
		Cols(entity.SessionHistoryFieldID).
		Where(builder.Eq{entity.SessionHistoryFieldSessionID: sessionID}).
		Desc(entity.SessionHistoryFieldCreatedAt).
		Limit(keep).
		Find(&ids); err != nil {
		return fmt.Errorf("failed to select retained history: %w", err)
	}
	if len(ids) < keep {
		// nothing beyond the cap yet
		return nil
	}

	_, err := r.session.Table(entity.TableNameSessionHistory).
		Where(builder.Eq{entity.SessionHistoryFieldSessionID: sessionID}).
		And(builder.NotIn(entity.SessionHistoryFieldID, ids)).
		Delete(&entity.SessionHistory{})
	if err != nil {
		return fmt.Errorf("failed to trim session history: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteIdleSince(cutoff time.Time) (int64, error) {
	var stale []*entity.Session
	if err := r.session.Table(entity.TableNameSession).
		Where(builder.Lt{entity.SessionFieldLastActive: cutoff}).
		Find(&stale); err != nil {
		return 0, fmt.Errorf("failed to find idle sessions: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}

	if _, err := r.session.Table(entity.TableNameSessionHistory).
		Where(builder.In(entity.SessionHistoryFieldSessionID, ids)).
		Delete(&entity.SessionHistory{}); err != nil {
		return 0, fmt.Errorf("failed to delete idle session history: %w", err)
	}

	deleted, err := r.session.Table(entity.TableNameSession).
		Where(builder.In(entity.SessionFieldID, ids)).
		Delete(&entity.Session{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	return deleted, nil
}
