package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/pkg/cache"
	"github.com/paraggit/reportportal-llm-query/pkg/projectlog"
	"github.com/paraggit/reportportal-llm-query/repository/xormimplement"
	"github.com/paraggit/reportportal-llm-query/router"
	sessionservice "github.com/paraggit/reportportal-llm-query/service/session"
)

func main() {
	defer func() {
		if serviceErr := recover(); serviceErr != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			log.Println("The service exits abnormally, error message:【", serviceErr, "】")
			log.Println("Stack info: ")
			fmt.Printf("==> %s\n", string(buf[:n]))

			os.Exit(1)
		}
	}()

	projectlog.Init()

	go startServer()
	go startMaintenance()
	waitStop()
}

func startServer() {
	addr := config.GetInstance().GetString(config.AppHost)
	if err := http.ListenAndServe(addr, router.GetInstance()); err != nil {
		logrus.Errorf("Failed to ListenAndServer at %v, err = %v", addr, err)
		os.Exit(1)
	}
}

// startMaintenance periodically drops idle sessions and sweeps expired cache
// entries.
func startMaintenance() {
	sessionSvc := sessionservice.NewService(xormimplement.GetRepositoryFactoryInstance())
	cacheStore := cache.GetInstance()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

		if _, err := sessionSvc.CleanupIdle(ctx); err != nil {
			logrus.Warnf("session cleanup failed: %v", err.Message)
		}
		if err := cacheStore.Sweep(ctx); err != nil {
			logrus.Warnf("cache sweep failed: %v", err)
		}

		cancel()
	}
}

func waitStop() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	sig := <-sc
	log.Printf("exit: signal=<%d>.\n", sig)
	switch sig {
	case syscall.SIGTERM:
		log.Println("exit: bye :-).")
		os.Exit(0)
	default:
		log.Println("exit: bye :-(.")
		os.Exit(1)
	}
}
