package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-sitegen/cmd/site/internal/bootstrap"
	sitecmd "github.com/goliatone/go-sitegen/internal/commands/site"
	"github.com/goliatone/go-sitegen/internal/generator"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runPreview(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("site preview: %v", err)
	}
}

func runPreview(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("site-preview", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a sitegen.toml configuration file")
	contentDir := fs.String("content-dir", "", "Path to the content root (overrides config)")
	layoutsDir := fs.String("layouts-dir", "", "Path to the layouts root (overrides config)")
	filePath := fs.String("file", "", "Document to preview, relative to the content root")
	htmlOnly := fs.Bool("html-only", false, "Print only the rendered HTML")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return fmt.Errorf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		ContentDir: *contentDir,
		LayoutsDir: *layoutsDir,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	gates := sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
	}
	handler := sitecmd.NewPreviewDocumentHandler(module.Generator, module.Logger, gates)

	var page *generator.RenderedPage
	cmd := sitecmd.PreviewDocumentCommand{
		Path: *filePath,
		Callback: func(env sitecmd.PreviewEnvelope) {
			page = env.Page
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute preview command: %w", err)
	}
	if page == nil {
		return fmt.Errorf("preview produced no page for %s", *filePath)
	}

	if *htmlOnly {
		fmt.Fprintln(out, page.HTML)
		return nil
	}

	fmt.Fprintf(out, "Source: %s\nRoute: %s\nLayout: %s\nDraft: %t\n\n", page.Source, page.Route, page.Layout, page.Draft)
	fmt.Fprintf(out, "Rendered HTML:\n%s\n", page.HTML)
	return nil
}
