package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytget/video-api/internal/api"
	"github.com/ytget/video-api/internal/catalog"
	"github.com/ytget/video-api/internal/config"
	"github.com/ytget/video-api/internal/download"
	"github.com/ytget/video-api/internal/fetcher"
	"github.com/ytget/video-api/internal/model"
	"github.com/ytget/video-api/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	log.Printf("video-api v%s starting...", version)

	settings, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := platform.CreateDirectoryIfNotExists(settings.DownloadDir); err != nil {
		log.Fatalf("failed to ensure downloads dir: %v", err)
	}
	log.Printf("downloading into %s", settings.DownloadDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if settings.InstallYTDLP {
		if err := fetcher.Install(ctx); err != nil {
			log.Fatalf("%v", err)
		}
	}

	store := download.NewStore(settings.TaskTTL, settings.MaxTasks)
	downloadSvc := download.NewService(store, settings.DownloadDir, settings.MaxParallel)
	downloadSvc.SetTaskTimeout(settings.TaskTimeout)
	for p, f := range fetcher.Registry() {
		downloadSvc.RegisterFetcher(p, f)
	}
	downloadSvc.SetUpdateCallback(func(task model.Task) {
		if task.Status.IsFinished() {
			log.Printf("task %s finished: %s (%d active)", task.ID, task.Status, store.ActiveCount())
		}
	})
	go store.RunJanitor(ctx, settings.JanitorInterval)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(downloadSvc, catalog.New(settings.DownloadDir), platform.NewPlaylistParserService(), version)
	srv := &http.Server{
		Addr:              settings.Addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down")

		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}

		// running downloads are cancelled and recorded as failed
		cancel()
		downloadSvc.Close()
		downloadSvc.Wait()
		log.Println("downloads stopped")
	}()

	log.Printf("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	<-done
}
