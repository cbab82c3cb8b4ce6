package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/garageboard/internal/config"
	"github.com/iudanet/garageboard/internal/server"
	"github.com/iudanet/garageboard/internal/server/handlers"
	"github.com/iudanet/garageboard/internal/server/storage/sqlite"
	"github.com/iudanet/garageboard/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file (yaml)")
	seed := flag.Bool("seed", false, "Insert demo data when the board is empty")
	issueToken := flag.String("issue-token", "", "Print an access token for the given operator and exit")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath, *seed, *issueToken); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, seed bool, issueToken string) error {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if cfg.JWTSecret == "" {
		return errors.New("jwt_secret is not set (use GARAGEBOARD_JWT_SECRET or the config file)")
	}
	jwtCfg := handlers.JWTConfig{
		Secret:         []byte(cfg.JWTSecret),
		AccessTokenTTL: cfg.AccessTokenTTL,
	}

	// Выпуск токена оператора без запуска сервера
	if issueToken != "" {
		if err := validation.ValidateOperator(issueToken); err != nil {
			return err
		}
		token, expiresAt, err := handlers.GenerateAccessToken(jwtCfg, issueToken)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "Token for %s expires at %s\n", issueToken, expiresAt.Format(time.RFC3339))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	if seed {
		n, err := store.Seed(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("Demo data seeded", "appointments", n)
	}

	srv := server.New(server.Options{
		Addr:       cfg.Addr,
		Version:    Version,
		JWT:        jwtCfg,
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
	}, store, logger)

	logger.Info("GarageBoard server starting", "addr", cfg.Addr, "version", Version, "db", cfg.DBPath)
	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("GarageBoard Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
