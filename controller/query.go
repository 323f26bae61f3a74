package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/pkg/clients/httptool"
	"github.com/paraggit/reportportal-llm-query/pkg/validate"
	"github.com/paraggit/reportportal-llm-query/repository/xormimplement"
	"github.com/paraggit/reportportal-llm-query/service/answer"
	sessionservice "github.com/paraggit/reportportal-llm-query/service/session"
)

// Query answers one natural-language question about test results.
func Query(ctx *gin.Context) {
	var req model.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if modelErr := validate.Query(req.Query); modelErr != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": modelErr.Message, "code": modelErr.Code})
		return
	}

	sessionSvc := sessionservice.NewService(xormimplement.GetRepositoryFactoryInstance())

	sessionID := req.SessionID
	if sessionID == constant.EmptyString {
		created, modelErr := sessionSvc.CreateSession(ctx)
		if modelErr != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": modelErr.Message, "code": modelErr.Code})
			return
		}
		sessionID = created
	}

	res := answer.GetInstance().Answer(ctx, req.Query, sessionID)

	if modelErr := sessionSvc.AddToHistory(ctx, sessionID, req.Query, res.Answer, res.Metadata); modelErr != nil {
		log.Warnf("failed to record session history: %v", modelErr.Message)
	}

	ctx.JSON(http.StatusOK, res)
}

// QueryStream answers one question, streaming the generated text as
// server-sent events.
func QueryStream(ctx *gin.Context) {
	var req model.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if modelErr := validate.Query(req.Query); modelErr != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": modelErr.Message, "code": modelErr.Code})
		return
	}

	ctx.Writer.Header().Set(httptool.HeaderContentType, httptool.HeaderContentTypeStream)
	ctx.Writer.Header().Set(httptool.HeaderContentCache, httptool.HeaderContentCacheNo)
	ctx.Writer.Header().Set(httptool.HeaderContentConnection, httptool.HeaderContentKeepAlive)
	ctx.Writer.Header().Set(httptool.HeaderContentTransfer, httptool.HeaderContentChunked)

	answer.GetInstance().AnswerStream(ctx, req.Query, req.SessionID, func(chunk string) error {
		if _, err := fmt.Fprintf(ctx.Writer, "data: %v\n\n", chunk); err != nil {
			return err
		}
		ctx.Writer.Flush()
		return nil
	})
}
