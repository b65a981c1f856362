package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/seastrikehq/seastrike-backend/api"
	"github.com/seastrikehq/seastrike-backend/api/legacy"
	"github.com/seastrikehq/seastrike-backend/db"
	"github.com/seastrikehq/seastrike-backend/db/sqlc"
	"github.com/seastrikehq/seastrike-backend/models/game"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			panic(err)
		}
		logger.SetLevel(parsed)
	}
	return logger
}

func main() {
	if os.Getenv("STAGE") != "prod" {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}
	stage := os.Getenv("STAGE")
	if stage != api.StageDev && stage != api.StageProd {
		panic("stage must be either dev or prod")
	}
	port := os.Getenv("PORT")
	tcpPort := os.Getenv("TCP_PORT")
	legacyPort := os.Getenv("LEGACY_PORT")

	logger := newLogger()

	opts := []api.Option{
		api.WithPort(port),
		api.WithStage(stage),
		api.WithLogger(logger),
	}
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		dbConn := db.MustConnectToDb(psqlUrl)
		defer dbConn.Close()
		opts = append(opts, api.WithQuerier(sqlc.New(dbConn)))
	}

	sessions := game.NewSessionManager(logger)
	registry := game.NewRegistry(sessions, logger)
	server := api.NewServer(registry, sessions, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go server.ManageGameTermination(ctx)

	if tcpPort != "" {
		listener, err := net.Listen("tcp", "0.0.0.0:"+tcpPort)
		if err != nil {
			panic(err)
		}
		go server.ServeTCP(ctx, listener)
	}

	if legacyPort != "" {
		listener, err := net.Listen("tcp", "0.0.0.0:"+legacyPort)
		if err != nil {
			panic(err)
		}
		go legacy.NewRoom(logger).Serve(ctx, listener)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /seastrike", server.HandleWs)

	httpServer := &http.Server{Addr: "0.0.0.0:" + server.Port(), Handler: mux}
	go func() {
		<-ctx.Done()
		server.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Infof("listening to port %s", server.Port())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalln(err)
	}
}
