package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/repository"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/service"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/config"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/logger"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// app wires config, storage, repositories and services for one command
// invocation. Repositories are loaded eagerly so schema chains run before
// any command logic touches the data.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	close  []func() error

	users        *repository.UserRepository
	controlRepo  *repository.ControlRepository
	assessRepo   *repository.AssessmentRepository
	evalRepo     *repository.EvaluationRepository
	reqRepo      *repository.RequirementRepository
	artifactRepo *repository.ArtifactRepository

	directory   *service.DirectoryService
	importer    *service.ImportService
	exporter    *service.ExportService
	controls    *service.ControlService
	assessments *service.AssessmentService
	evaluations *service.EvaluationService
	artifacts   *service.ArtifactService
	migrator    *service.MigrationService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logr}

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	a.users = repository.NewUserRepository(store, logr)
	a.controlRepo = repository.NewControlRepository(store, logr)
	a.assessRepo = repository.NewAssessmentRepository(store, logr)
	a.evalRepo = repository.NewEvaluationRepository(store, logr)
	a.reqRepo = repository.NewRequirementRepository(store, logr)
	a.artifactRepo = repository.NewArtifactRepository(store, logr)

	loaders := []func(context.Context) error{
		a.users.Load, a.controlRepo.Load, a.assessRepo.Load,
		a.evalRepo.Load, a.reqRepo.Load, a.artifactRepo.Load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}

	validate := validator.New()
	a.directory = service.NewDirectoryService(a.users, cfg.Import.EmailDomain, validate, logr)
	a.importer = service.NewImportService(a.directory, a.controlRepo, a.assessRepo, a.evalRepo, a.reqRepo, logr)
	a.exporter = service.NewExportService(a.directory, a.controlRepo, a.assessRepo, a.evalRepo, a.reqRepo, a.artifactRepo, logr)
	a.controls = service.NewControlService(a.controlRepo, validate, logr)
	a.assessments = service.NewAssessmentService(a.assessRepo, a.evalRepo, validate, logr)
	a.evaluations = service.NewEvaluationService(a.evalRepo, a.assessRepo, validate, logr)
	a.artifacts = service.NewArtifactService(a.artifactRepo, validate, logr)
	a.migrator = service.NewMigrationService(a.assessRepo, a.evalRepo, logr)

	return a, nil
}

func (a *app) openStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return storage.NewFileStore(cfg.Storage.DataDir)
	case config.BackendRedis:
		client, err := storage.NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.close = append(a.close, client.Close)
		return storage.NewRedisStore(client, "csf"), nil
	case config.BackendPostgres:
		db, err := storage.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.close = append(a.close, db.Close)
		return storage.NewPostgresStore(db)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func (a *app) Close() {
	for _, fn := range a.close {
		_ = fn()
	}
	_ = a.logger.Sync()
}
