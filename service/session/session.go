// Package session tracks conversation sessions and their query history.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/entity"
	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/pkg/tools"
	"github.com/paraggit/reportportal-llm-query/repository/factory"
)

var (
	serviceOnce sync.Once
	instance    *Service
)

type Service struct {
	repositoryFactory factory.Factory
	historyLimit      int
	retentionDays     int
}

func NewService(repositoryFactory factory.Factory) *Service {
	serviceOnce.Do(func() {
		cfg := config.GetInstance()
		instance = &Service{
			repositoryFactory: repositoryFactory,
			historyLimit:      cfg.GetIntOrDefault(config.SessionHistoryLimit, constant.DefaultSessionHistoryLimit),
			retentionDays:     cfg.GetIntOrDefault(config.SessionRetentionDays, constant.DefaultSessionRetentionDays),
		}
	})

	return instance
}

// CreateSession registers a new session and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	repo, err := s.repositoryFactory.NewSessionRepository(session)
	if err != nil {
		return constant.EmptyString, model.NewError(model.ErrorNewRepo, err)
	}

	now := time.Now()
	record := &entity.Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
	}
	if err := repo.Create(record); err != nil {
		return constant.EmptyString, model.NewError(model.ErrorDB, err)
	}

	log.Infof("created session %v", record.ID)
	return record.ID, nil
}

// GetSession returns the session record, or ErrorSessionNotFound.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*entity.Session, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	repo, err := s.repositoryFactory.NewSessionRepository(session)
	if err != nil {
		return nil, model.NewError(model.ErrorNewRepo, err)
	}

	record, err := repo.Get(sessionID)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	if record == nil {
		return nil, model.NewError(model.ErrorSessionNotFound, nil)
	}
	return record, nil
}

// AddToHistory appends one exchange to the session's history, refreshes its
// last-active time and trims the history to the configured limit.
func (s *Service) AddToHistory(ctx context.Context, sessionID, queryText, responseText string, metadata *model.ResponseMetadata) *model.Error {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	repo, err := s.repositoryFactory.NewSessionRepository(session)
	if err != nil {
		return model.NewError(model.ErrorNewRepo, err)
	}

	metadataJSON := constant.EmptyString
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Warnf("failed to serialize response metadata: %v", err)
		} else {
			metadataJSON = string(raw)
		}
	}

	now := time.Now()
	if err := repo.AddHistory(&entity.SessionHistory{
		SessionID: sessionID,
		Query:     queryText,
		Response:  responseText,
		Metadata:  metadataJSON,
		CreatedAt: now,
	}); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	if err := repo.Touch(sessionID, now); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	if err := repo.TrimHistory(sessionID, s.historyLimit); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

// GetHistory returns the session's stored exchanges, oldest first.
func (s *Service) GetHistory(ctx context.Context, sessionID string) ([]*entity.SessionHistory, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	repo, err := s.repositoryFactory.NewSessionRepository(session)
	if err != nil {
		return nil, model.NewError(model.ErrorNewRepo, err)
	}

	history, err := repo.ListHistory(sessionID, s.historyLimit)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}
	return history, nil
}

// GetRecentContext renders the last n exchanges as plain text for prompt
// context. Responses are truncated to keep the prompt bounded.
func (s *Service) GetRecentContext(ctx context.Context, sessionID string, n int) (string, *model.Error) {
	history, modelErr := s.GetHistory(ctx, sessionID)
	if modelErr != nil {
		return constant.EmptyString, modelErr
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}

	var b strings.Builder
	for _, exchange := range history {
		response := exchange.Response
		if runes := []rune(response); len(runes) > 200 {
			response = string(runes[:200]) + "..."
		}
		fmt.Fprintf(&b, "User: %v\nAssistant: %v\n", exchange.Query, response)
	}
	return b.String(), nil
}

// CleanupIdle removes sessions idle longer than the retention window.
func (s *Service) CleanupIdle(ctx context.Context) (int64, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	repo, err := s.repositoryFactory.NewSessionRepository(session)
	if err != nil {
		return 0, model.NewError(model.ErrorNewRepo, err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	removed, err := repo.DeleteIdleSince(cutoff)
	if err != nil {
		return 0, model.NewError(model.ErrorDB, err)
	}

	if removed > 0 {
		log.Infof("removed %v idle sessions", removed)
	}
	return removed, nil
}
