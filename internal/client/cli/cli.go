// Package cli implements the garageboard command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/client/auth"
	"github.com/iudanet/garageboard/internal/client/board"
	"github.com/iudanet/garageboard/internal/client/cache"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/client/iocli"
	"github.com/iudanet/garageboard/internal/client/move"
	"github.com/iudanet/garageboard/internal/client/notify"
	"github.com/iudanet/garageboard/internal/client/storage"
	"github.com/iudanet/garageboard/internal/client/storage/boltdb"
	"github.com/iudanet/garageboard/internal/config"
	"github.com/iudanet/garageboard/internal/telemetry"
)

// Streams are the terminal streams of one invocation.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// LocalStorage is the on-disk state of the client.
type LocalStorage interface {
	storage.AuthStorage
	storage.CacheStorage
	storage.MetadataStorage
	Close() error
}

// Cli собирает зависимости команд клиента
type Cli struct {
	streams Streams
	version string

	// значения глобальных флагов
	configPath string
	serverURL  string
	dbPath     string
	onConflict string

	cfg         *config.ClientConfig
	logger      *slog.Logger
	store       LocalStorage
	authService *auth.Service
	cache       *cache.Cache
	metrics     *telemetry.Instruments
	notifier    notify.Notifier
	io          iocli.IO
}

// Run executes the command line in args.
func Run(ctx context.Context, version string, args []string, streams Streams) error {
	c := &Cli{streams: streams, version: version}
	defer c.close(context.WithoutCancel(ctx))

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	return root.ExecuteContext(ctx)
}

// setup loads configuration and opens the local store. It runs before
// every command.
func (c *Cli) setup(ctx context.Context) error {
	cfg, err := config.LoadClient(c.configPath)
	if err != nil {
		return err
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.onConflict != "" {
		cfg.OnConflict = strings.ToLower(strings.TrimSpace(c.onConflict))
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = slog.New(slog.NewTextHandler(c.streams.Err, &slog.HandlerOptions{Level: level}))

	if err := telemetry.Init(ctx, "garageboard-cli", c.version); err != nil {
		c.logger.Warn("Telemetry disabled", "error", err)
	}
	c.metrics = telemetry.NewInstruments()

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	c.store = store

	c.authService = auth.NewService(store, c.logger)
	c.cache = cache.New(cfg.CacheTTL, store, c.logger)
	c.notifier = notify.NewTerminalNotifier(c.streams.Err)
	if f, ok := c.streams.In.(*os.File); ok && f == os.Stdin {
		c.io = iocli.NewStdio()
	} else {
		c.io = iocli.NewStreams(c.streams.In, c.streams.Out)
	}
	return nil
}

func (c *Cli) close(ctx context.Context) {
	if c.cache != nil {
		if n := c.cache.Purge(ctx); n > 0 {
			c.logger.Debug("Expired cache entries purged", "count", n)
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Error("Failed to close local database", "error", err)
		}
	}
	if c.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)
	}
}

// client returns an API client authenticated with the stored session.
func (c *Cli) client(ctx context.Context) (*api.Client, *auth.Session, error) {
	session, err := c.authService.Current(ctx)
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		return nil, nil, errors.New("not logged in, run 'garageboard login --token <token>' first")
	case errors.Is(err, auth.ErrSessionExpired):
		return nil, nil, fmt.Errorf("session of %s has expired, log in again", session.Operator)
	case err != nil:
		return nil, nil, err
	}

	serverURL := session.ServerURL
	if serverURL == "" {
		serverURL = c.cfg.ServerURL
	}
	client := api.NewClient(serverURL)
	client.SetToken(session.Token)
	return client, session, nil
}

// prompter picks the conflict surface: a fixed answer from on_conflict,
// the interactive form on a terminal, or line prompts otherwise.
func (c *Cli) prompter() (conflict.Prompter, error) {
	if c.cfg.OnConflict != config.OnConflictAsk {
		choice, err := conflict.ParseChoice(c.cfg.OnConflict)
		if err != nil {
			return nil, err
		}
		return conflict.StaticPrompter{Choice: choice}, nil
	}
	if isTerminal(c.streams.In) {
		return NewFormPrompter(c.streams.Out), nil
	}
	return iocli.NewPrompter(c.io), nil
}

func (c *Cli) negotiator() (*conflict.Negotiator, error) {
	p, err := c.prompter()
	if err != nil {
		return nil, err
	}
	return conflict.NewNegotiator(p, c.logger, c.metrics), nil
}

// loadBoard fetches the board into a fresh store. A stats failure is
// logged and does not fail the load.
func (c *Cli) loadBoard(ctx context.Context, client board.Source) (*board.Store, error) {
	store := board.NewStore(board.State{})
	if err := board.NewLoader(client, store, c.logger).Load(ctx); err != nil {
		if store.Snapshot().Error != "" {
			return nil, explain(err)
		}
		c.logger.Warn("Board stats unavailable", "error", err)
	}

	if err := c.store.SaveLastBoardRefresh(ctx, time.Now().Unix()); err != nil {
		c.logger.Warn("Failed to save board refresh time", "error", err)
	}
	return store, nil
}

func (c *Cli) moveService(client move.API, store *board.Store) (*move.Service, error) {
	neg, err := c.negotiator()
	if err != nil {
		return nil, err
	}
	cfg := move.Config{
		Timeout:            c.cfg.Move.Timeout,
		DoubleMoveWindow:   c.cfg.Move.DoubleMoveWindow,
		BaseRetryDelay:     c.cfg.Move.BaseRetryDelay,
		MaxRetryDelay:      c.cfg.Move.MaxRetryDelay,
		MaxPending:         c.cfg.Move.MaxPending,
		MaxConcurrentPerID: c.cfg.Move.MaxConcurrentPerID,
		MaxAutoRetries:     c.cfg.Move.MaxAutoRetries,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return move.NewService(client, store, cfg, c.logger,
		move.WithNegotiator(neg),
		move.WithNotifier(c.notifier),
		move.WithMetrics(c.metrics),
	), nil
}

func (c *Cli) println(a ...any) {
	_, _ = fmt.Fprintln(c.streams.Out, a...)
}

func (c *Cli) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.streams.Out, format, a...)
}

// ReportedError wraps an error the user has already been shown.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err needs no further printing.
func IsReported(err error) bool {
	var re *ReportedError
	return errors.As(err, &re)
}

// explain adds a hint to errors the operator can act on.
func explain(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (the server rejected the operator token, run 'garageboard login' again)", err)
	}
	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// requireArgs is cobra.ExactArgs with a usage hint.
func requireArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}
}
