package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	sitegen "github.com/goliatone/go-sitegen"
	"github.com/goliatone/go-sitegen/cmd/site/internal/bootstrap"
	sitecmd "github.com/goliatone/go-sitegen/internal/commands/site"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("site build: %v", err)
	}
}

func runBuild(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("site-build", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a sitegen.toml configuration file")
	contentDir := fs.String("content-dir", "", "Path to the content root (overrides config)")
	layoutsDir := fs.String("layouts-dir", "", "Path to the layouts root (overrides config)")
	outputDir := fs.String("output", "", "Output directory for built artifacts (overrides config)")
	baseURL := fs.String("base-url", "", "Absolute base URL used in permalinks and feeds (overrides config)")
	paths := fs.String("paths", "", "Comma separated list of documents to rebuild (default: everything)")
	drafts := fs.Bool("drafts", false, "Render draft documents too")
	dryRun := fs.Bool("dry-run", false, "Render without writing artifacts")
	clean := fs.Bool("clean", false, "Remove stale artifacts before building")
	catalog := fs.Bool("catalog", false, "Record the build in the catalog")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		ContentDir: *contentDir,
		LayoutsDir: *layoutsDir,
		OutputDir:  *outputDir,
		BaseURL:    *baseURL,
		CleanBuild: *clean,
		Catalog:    *catalog,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	gates := sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
		CatalogEnabled:   func() bool { return *catalog },
	}
	handler := sitecmd.NewBuildSiteHandler(module.Generator, module.Catalog, module.Logger, gates)

	var result *sitegen.BuildResult
	cmd := sitecmd.BuildSiteCommand{
		Paths:         bootstrap.SplitPaths(*paths),
		IncludeDrafts: *drafts,
		DryRun:        *dryRun,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			result = env.Result
		},
	}
	// A partial failure still produces a result through the callback, so the
	// summary is printed before the error decides the exit code.
	execErr := handler.Execute(context.Background(), cmd)
	printSummary(out, result)
	if result != nil && result.HasErrors() {
		return fmt.Errorf("build finished with %d error(s)", len(result.Errors))
	}
	if execErr != nil {
		return fmt.Errorf("execute build command: %w", execErr)
	}
	return nil
}

func printSummary(out io.Writer, result *sitegen.BuildResult) {
	if result == nil {
		return
	}
	mode := "build"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "%s complete in %s\n", mode, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  documents: %d\n", result.Documents)
	fmt.Fprintf(out, "  pages built: %d, skipped: %d\n", result.PagesBuilt, result.PagesSkipped)
	fmt.Fprintf(out, "  assets built: %d, skipped: %d\n", result.AssetsBuilt, result.AssetsSkipped)
	for _, failure := range result.Failures() {
		fmt.Fprintf(out, "  error [%s] %s: %v\n", failure.Kind, failure.Path, failure.Err)
	}
}
