package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/repository/xormimplement"
	sessionservice "github.com/paraggit/reportportal-llm-query/service/session"
)

// StartSession creates a new conversation session.
func StartSession(ctx *gin.Context) {
	svc := sessionservice.NewService(xormimplement.GetRepositoryFactoryInstance())

	sessionID, modelErr := svc.CreateSession(ctx)
	if modelErr != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": modelErr.Message, "code": modelErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

// GetSessionHistory returns the stored exchanges of one session, oldest
// first.
func GetSessionHistory(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	svc := sessionservice.NewService(xormimplement.GetRepositoryFactoryInstance())

	if _, modelErr := svc.GetSession(ctx, sessionID); modelErr != nil {
		status := http.StatusInternalServerError
		if modelErr.Code == model.ErrorSessionNotFound {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": modelErr.Message, "code": modelErr.Code})
		return
	}

	history, modelErr := svc.GetHistory(ctx, sessionID)
	if modelErr != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": modelErr.Message, "code": modelErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"session_id": sessionID, "history": history})
}
