// Package server initializes and runs the policy capture server.
// It selects and prepares the record store, seeds the bootstrap account,
// wires the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/dbx"
	"github.com/insuredesk/policykeeper/internal/logging"
	"github.com/insuredesk/policykeeper/internal/server/config"
	"github.com/insuredesk/policykeeper/internal/server/httpapi"
	"github.com/insuredesk/policykeeper/internal/server/metrics"
	"github.com/insuredesk/policykeeper/internal/server/policies"
	"github.com/insuredesk/policykeeper/internal/server/repositories/repomanager"
	usersrepo "github.com/insuredesk/policykeeper/internal/server/repositories/users"
	"github.com/insuredesk/policykeeper/internal/server/users"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	userService   *users.Service
	policyService *policies.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm := initRepositoryManager(ctx, cfg, logger)

	us := users.NewService(usersrepo.NewMemoryRepository(), cfg)
	ps := policies.NewService(rm)

	if err := seedAccount(ctx, us, cfg); err != nil {
		return nil, err
	}

	return &App{config: cfg, logger: logger, userService: us, policyService: ps}, nil
}

// initRepositoryManager picks the record store backing from the DSN. An
// unreachable PostgreSQL or a failed migration does not abort startup: the
// server comes up with persistence disabled and every save reports the store
// unavailable until the process is restarted.
func initRepositoryManager(ctx context.Context, cfg *config.Config, logger logging.Logger) repomanager.RepositoryManager {

	if cfg.DatabaseDSN == "memory" {
		logger.Info(ctx, "using in-process record store")
		return repomanager.NewInMemoryRepositoryManager()
	}

	db, err := dbx.Open(ctx, "pgx", cfg.DatabaseDSN, cfg.DBConnectTimeout)
	if err != nil {
		logger.Warn(ctx, "record store unreachable, persistence disabled", "error", err)
		return nil
	}

	rm := repomanager.NewPostgresRepositoryManager(db)
	if err := rm.RunMigrations(ctx); err != nil {
		logger.Warn(ctx, "migrations failed, persistence disabled", "error", err)
		return nil
	}

	return rm
}

func seedAccount(ctx context.Context, us *users.Service, cfg *config.Config) error {
	_, err := us.Register(ctx, cfg.SeedUsername, cfg.SeedPassword, cfg.SeedFullName, cfg.SeedEmail)
	if err != nil && !errors.Is(err, common.ErrDuplicateUsername) {
		return err
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	m := metrics.New(prometheus.DefaultRegisterer)
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.policyService, m, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
