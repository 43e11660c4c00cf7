package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tokenchat/internal/api"
	"tokenchat/internal/chat"
	"tokenchat/internal/completion"
	"tokenchat/internal/conversation"
	"tokenchat/internal/marketdata"
	"tokenchat/internal/middleware"
	"tokenchat/pkg/config"
	"tokenchat/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	conversationRepo := conversation.NewRepository(database)
	conversationService := conversation.NewService(conversationRepo)

	marketClient := marketdata.NewClient(cfg)
	completionService := completion.NewService(cfg)

	chatService := chat.NewService(conversationService, marketClient, completionService)

	apiHandler := api.NewHandler(chatService)

	mux := http.NewServeMux()
	mux.Handle("/api/chat", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.SendMessageHandler)))
	mux.Handle("/api/chat/history/", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.GetChatHistoryHandler)))

	server := &http.Server{
		Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		logrus.Infof("Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Failed to stop server: %v", err)
	}

	logrus.Info("Server stopped")
}
