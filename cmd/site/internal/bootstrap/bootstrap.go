package bootstrap

import (
	"fmt"
	"strings"

	sitegen "github.com/goliatone/go-sitegen"
	"github.com/goliatone/go-sitegen/internal/di"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// Options captures configuration for site CLI bootstraps. Zero values defer
// to the config file and the built-in defaults.
type Options struct {
	ConfigPath     string
	ContentDir     string
	LayoutsDir     string
	OutputDir      string
	BaseURL        string
	CleanBuild     bool
	Incremental    *bool
	Catalog        bool
	Watch          bool
	Server         bool
	Host           string
	Port           int
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the sitegen module with the services the CLIs drive.
type Module struct {
	Module    *sitegen.Module
	Generator sitegen.GeneratorService
	Catalog   sitegen.CatalogService
	Watcher   sitegen.WatchService
	Server    sitegen.ServerService
	Logger    interfaces.Logger
}

// BuildModule constructs a sitegen module configured for CLI builds.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg.Features.Generator = true
	cfg.Features.Catalog = opts.Catalog
	cfg.Features.Watch = opts.Watch
	cfg.Features.Server = opts.Server

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if dir := strings.TrimSpace(opts.LayoutsDir); dir != "" {
		cfg.Layouts.Dir = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.Site.BaseURL = base
	}
	if opts.CleanBuild {
		cfg.Generator.CleanBuild = true
	}
	if opts.Incremental != nil {
		cfg.Generator.Incremental = *opts.Incremental
	}
	if host := strings.TrimSpace(opts.Host); host != "" {
		cfg.Server.Host = host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := sitegen.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise sitegen module: %w", err)
	}

	logger := logging.GeneratorLogger(module.Container().LoggerProvider())

	return &Module{
		Module:    module,
		Generator: module.Generator(),
		Catalog:   module.Catalog(),
		Watcher:   module.Watcher(),
		Server:    module.Server(),
		Logger:    logger,
	}, nil
}

// Close releases resources held by the wrapped module.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// SplitPaths parses a comma separated path list into a trimmed slice.
func SplitPaths(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

func loadConfig(path string) (sitegen.Config, error) {
	if strings.TrimSpace(path) == "" {
		return sitegen.DefaultConfig(), nil
	}
	cfg, err := sitegen.LoadConfig(path)
	if err != nil {
		return sitegen.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
