package main

import (
	"context"
	"flag"
	"os"

	"github.com/yigit/nhance/internal/bootstrap"
	"github.com/yigit/nhance/internal/pkg/logger"
	"github.com/yigit/nhance/internal/server"
)

// @title nhance API
// @version 1.0
// @description API for the nhance study portal: curriculum catalog, study materials, reference books and quizzes

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
