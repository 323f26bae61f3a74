package router

import (
	"github.com/gin-gonic/gin"

	"github.com/paraggit/reportportal-llm-query/controller"
)

func addApiRouter(engine *gin.Engine) {

	api := engine.Group("/api/v1")
	{
		// query pipeline
		api.POST("/query", controller.Query)
		api.POST("/query/stream", controller.QueryStream)

		// session management
		api.POST("/session", controller.StartSession)
		api.GET("/session/:session_id/history", controller.GetSessionHistory)
	}
}
