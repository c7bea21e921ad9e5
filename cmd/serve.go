package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"palmsgig.com/palmsgig/internal/cache"
	config "palmsgig.com/palmsgig/internal/configs"
	"palmsgig.com/palmsgig/internal/fees"
	httpapi "palmsgig.com/palmsgig/internal/http"
	"palmsgig.com/palmsgig/internal/notifications"
	repository "palmsgig.com/palmsgig/internal/repositories"
	"palmsgig.com/palmsgig/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task marketplace HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		database := config.NewDatabaseClient(cfg.DatabaseDSN)
		taskRepo := repository.NewTaskRepository(database)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		store := cache.NewRedisStore(redisClient)

		calculator := fees.NewCalculator(cfg.ServiceFeePercent)
		notifier := notifications.NewLogNotifier()
		taskService := services.NewTaskService(taskRepo, calculator, notifier)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := echo.New()
		handler := httpapi.NewHandler(taskService)
		httpapi.Register(e, handler, store, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		echoCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		_ = e.Shutdown(echoCtx)

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
