package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-sitegen/cmd/site/internal/bootstrap"
	sitecmd "github.com/goliatone/go-sitegen/internal/commands/site"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServe(ctx, os.Args[1:]); err != nil {
		log.Fatalf("site serve: %v", err)
	}
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("site-serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a sitegen.toml configuration file")
	contentDir := fs.String("content-dir", "", "Path to the content root (overrides config)")
	layoutsDir := fs.String("layouts-dir", "", "Path to the layouts root (overrides config)")
	outputDir := fs.String("output", "", "Output directory served to the browser (overrides config)")
	host := fs.String("host", "", "Interface the preview server binds to (overrides config)")
	port := fs.Int("port", 0, "Port the preview server binds to (overrides config)")
	watch := fs.Bool("watch", true, "Rebuild when content or layouts change")
	drafts := fs.Bool("drafts", false, "Render draft documents too")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		ContentDir: *contentDir,
		LayoutsDir: *layoutsDir,
		OutputDir:  *outputDir,
		Host:       *host,
		Port:       *port,
		Watch:      *watch,
		Server:     true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.Server == nil {
		return fmt.Errorf("preview server not configured; ensure Features.Server is enabled")
	}

	gates := sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
		WatchEnabled:     func() bool { return *watch },
	}

	build := sitecmd.NewBuildSiteHandler(module.Generator, nil, module.Logger, gates)
	if err := build.Execute(ctx, sitecmd.BuildSiteCommand{IncludeDrafts: *drafts}); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	errCh := make(chan error, 2)

	if *watch {
		watchHandler := sitecmd.NewWatchSiteHandler(module.Watcher, module.Generator, module.Logger, gates)
		go func() {
			errCh <- watchHandler.Execute(ctx, sitecmd.WatchSiteCommand{IncludeDrafts: *drafts})
		}()
	}

	go func() {
		errCh <- module.Server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}
}
