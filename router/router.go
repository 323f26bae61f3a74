package router

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/paraggit/reportportal-llm-query/middleware"
)

var once sync.Once
var instance *gin.Engine

func init() {
	once.Do(func() {
		instance = gin.New()
		instance.Use(gin.Recovery(), middleware.Logger)
		addBasicRouter(instance)
		addApiRouter(instance)
	})
}

func GetInstance() *gin.Engine {
	return instance
}
