package factory

import (
	"context"

	"github.com/paraggit/reportportal-llm-query/repository"
	"github.com/paraggit/reportportal-llm-query/repository/interfaces"
)

type Factory interface {
	NewSession(ctx context.Context) interfaces.Session
	NewSessionRepository(session interfaces.Session) (repository.SessionRepository, error)
}
