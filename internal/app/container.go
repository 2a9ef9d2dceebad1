// Package app wires application services to their infrastructure adapters.
package app

import (
	"context"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/ai"
	"github.com/doeshing/jarvis-go/internal/infrastructure/audit"
	"github.com/doeshing/jarvis-go/internal/infrastructure/authn"
	"github.com/doeshing/jarvis-go/internal/infrastructure/config"
	"github.com/doeshing/jarvis-go/internal/infrastructure/credentials"
	"github.com/doeshing/jarvis-go/internal/infrastructure/executor"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
	"github.com/doeshing/jarvis-go/internal/pkg/logger"
	"github.com/doeshing/jarvis-go/internal/ports"
	"github.com/doeshing/jarvis-go/internal/security"
	"github.com/doeshing/jarvis-go/internal/services"
)

// Container holds the fully wired dependency graph.
type Container struct {
	Config       domain.Config
	StateDir     string
	Logger       ports.Logger
	Credentials  *credentials.FileStore
	Validator    *security.Validator
	Audit        *audit.FileLogger
	History      *history.SQLiteStore
	Gate         *authn.Authenticator
	Gateway      *ai.Gateway
	Executor     *executor.ShellExecutor
	Models       *domain.CandidateModels
	Doctor       *services.Doctor
	ConfigLoader *config.FileLoader
}

// BuildContainer constructs the dependency graph. The gateway starts
// without a credential; the interactive session injects the API key after
// first-run setup or login.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	log := logger.NewStd(verbose)

	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	validator, err := security.NewValidator(cfg.Security.RulesFile)
	if err != nil {
		log.Warn("ruleset rejected, using defaults", map[string]interface{}{
			"file":  cfg.Security.RulesFile,
			"error": err.Error(),
		})
		validator, err = security.NewValidator("")
		if err != nil {
			return nil, err
		}
	}

	stateDir := config.StateDir()
	store := credentials.NewFileStore(stateDir)
	auditLog := audit.NewFileLogger(cfg.Audit.LogFile, cfg.Audit.MaxSizeMB, cfg.Audit.MaxBackups)
	historyStore, err := history.NewSQLiteStore(stateDir)
	if err != nil {
		return nil, err
	}

	models := domain.NewCandidateModels(cfg.Models)
	gateway := ai.NewGateway(cfg.Gateway, "", models, log)

	doctor := services.NewDoctor(store, gateway, auditLog, cfg.Security.RulesFile, func(path string) error {
		_, err := security.NewValidator(path)
		return err
	})

	return &Container{
		Config:       cfg,
		StateDir:     stateDir,
		Logger:       log,
		Credentials:  store,
		Validator:    validator,
		Audit:        auditLog,
		History:      historyStore,
		Gate:         authn.NewAuthenticator(nil),
		Gateway:      gateway,
		Executor:     executor.NewShellExecutor(cfg.Execution, log),
		Models:       models,
		Doctor:       doctor,
		ConfigLoader: cfgLoader,
	}, nil
}

// Close releases the container's persistent resources.
func (c *Container) Close() error {
	var firstErr error
	if err := c.History.Close(); err != nil {
		firstErr = err
	}
	if err := c.Audit.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
