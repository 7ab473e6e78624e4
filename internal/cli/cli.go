// Package cli implements the bpmnlayout command-line interface.
//
// This package provides commands for turning an ELK-BPMN Extended Schema
// graph into a positioned BPMN 2.0 diagram (layout), re-serializing an
// already-computed diagram to a chosen output format (render), running the
// HTTP API as a long-lived process (serve), inspecting the pre-fold
// layered graph for diagnosing placement bugs (debug), and managing the
// on-disk layout cache (cache). The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lcpmarvel/bpmnlayout/pkg/buildinfo"
	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "bpmnlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bpmnlayout lays out BPMN process graphs and renders BPMN 2.0 diagrams",
		Long:         `bpmnlayout turns a position-less ELK-BPMN process graph into a fully positioned, orthogonally-routed BPMN 2.0 XML diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.debugCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache builds the pipeline's layout/artifact cache. noCache forces a
// NullCache regardless of the on-disk cache's availability.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/bpmnlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
