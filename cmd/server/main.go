package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"proshop/internal/config"
	"proshop/internal/es"
	"proshop/internal/handlers"
	"proshop/internal/logging"
	authmw "proshop/internal/middleware/auth"
	loggingmw "proshop/internal/middleware/logging"
	"proshop/internal/mongodb"
	"proshop/internal/mykafka"
	"proshop/internal/repo"
	"proshop/internal/service"
	"proshop/internal/transport/http"
	"proshop/internal/upload"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if configuration.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	ctx := context.Background()

	mg := mongodb.New(configuration.MongoURL, configuration.DBName)
	if err := mg.Connect(ctx); err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}

	userRepo := repo.NewMongoUserRepo(mg.Database())
	productRepo := repo.NewMongoProductRepo(mg.Database())

	tokens := &service.TokenService{Secret: []byte(configuration.JWT_SECRET)}
	guard := &authmw.Guard{Tokens: tokens}

	var producer *mykafka.Producer
	var publisher handlers.EventPublisher
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		publisher = producer
	}

	store, err := buildStore(ctx, configuration)
	if err != nil {
		log.Fatal(err)
	}

	var indexer *es.Indexer
	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			log.Fatal(err)
		}
		indexer = &es.Indexer{ES: esClient, Index: "products"}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "products"}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{Users: userRepo, Tokens: tokens, Producer: publisher},
		UserHandler: &handlers.UserAdminHandler{Users: userRepo, Producer: publisher},
		ProductHandler: &handlers.ProductHandler{
			Products: productRepo,
			Users:    userRepo,
			Store:    store,
			Producer: publisher,
			Indexer:  indexer,
		},
		SearchHandler: searchHandler,
		Guard:         guard,
		UploadDir:     configuration.UploadDir,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	log.Printf("server running on port %s", configuration.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := mg.Disconnect(shutdownCtx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

// buildStore picks R2 when configured, local disk otherwise.
func buildStore(ctx context.Context, cfg *config.Config) (upload.Store, error) {
	if cfg.R2Bucket != "" {
		store, err := upload.NewR2Store(ctx, upload.R2Config{
			AccountID:  cfg.R2AccountID,
			AccessKey:  cfg.R2AccessKey,
			SecretKey:  cfg.R2SecretKey,
			Bucket:     cfg.R2Bucket,
			PublicBase: cfg.R2PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("r2 store: %w", err)
		}
		return store, nil
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/") + "/public/uploads"
	return upload.NewDiskStore(cfg.UploadDir, base), nil
}
