package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/xmlout"
	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
)

// layoutCommand creates the layout command: the CLI's main entry point,
// running an ELK-BPMN graph through the full layout pipeline and writing the
// resulting BPMN 2.0 XML.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		verify  bool
		watch   bool
	)
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Lay out an ELK-BPMN graph and write BPMN 2.0 XML",
		Long: `Lay out an ELK-BPMN graph and write BPMN 2.0 XML.

The layout command reads an ELK-BPMN Extended Schema v2.0 JSON document,
runs it through the layout pipeline's stages, and writes the
resulting BPMN 2.0 XML, including the BPMNDiagram DI layer.

Computed diagrams are cached locally, keyed by a content hash of the input
graph plus the layout options, so re-running layout on an unchanged input
is instant.

Pass --watch for a live view of the pipeline's progress through its
stages while it runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, verify, watch)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.bpmn.xml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&watch, "watch", false, "show a live view of the pipeline's progress through its stages")
	cmd.Flags().Float64Var(&opts.HorizontalGap, "horizontal-gap", opts.HorizontalGap, "minimum horizontal gap between nodes")
	cmd.Flags().Float64Var(&opts.VerticalGap, "vertical-gap", opts.VerticalGap, "minimum vertical gap between nodes")
	cmd.Flags().Float64Var(&opts.ContainerPadding, "container-padding", opts.ContainerPadding, "padding inset for pools/lanes/expanded subprocesses")
	cmd.Flags().BoolVar(&opts.Compact, "compact", opts.Compact, "run the whitespace-compaction pass")
	cmd.Flags().BoolVar(&opts.CompactDependency, "compact-dependency", opts.CompactDependency, "compact in dependency-topological order rather than adjacency order")
	cmd.Flags().Float64Var(&opts.CompactMinGap, "compact-min-gap", opts.CompactMinGap, "minimum gap compaction preserves between nodes")
	cmd.Flags().BoolVar(&opts.Refine, "refine", opts.Refine, "run the constraint solver as a closing refinement pass")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the folded diagram's orthogonality and idempotence before writing")

	return cmd
}

// runLayout loads the graph, runs the pipeline, and writes the XML output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, verify, watch bool) error {
	logger := c.Logger
	g, err := elkio.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	ch, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer ch.Close()

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	keyer := cache.NewDefaultKeyer()
	layoutKey := keyer.LayoutKey(cache.Hash(raw), layoutKeyOpts(opts))
	artifactKey := keyer.ArtifactKey(layoutKey, cache.ArtifactKeyOpts{Format: "xml"})

	start := time.Now()
	var xmlBytes []byte
	cacheHit := false

	if cached, hit, err := ch.Get(ctx, artifactKey); err == nil && hit {
		xmlBytes = cached
		cacheHit = true
	} else if watch {
		res, err := runWatch(func() (pipeline.Result, error) { return pipeline.ToBpmn(g, opts) })
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		if verify && !pipeline.VerifyIdempotent(res.Diagram) {
			return fmt.Errorf("verify: diagram failed the orthogonality/idempotence check")
		}
		if n := len(res.RoutingFailures); n > 0 {
			logger.Debugf("%d edge(s) fell back to A* routing", n)
		}
		xmlBytes = xmlout.Render(g, res.Diagram)
		_ = ch.Set(ctx, artifactKey, xmlBytes, cache.TTLArtifact)
	} else {
		spinner := newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()
		res, err := pipeline.ToBpmn(g, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		if verify && !pipeline.VerifyIdempotent(res.Diagram) {
			spinner.StopWithError("Layout failed idempotence check")
			return fmt.Errorf("verify: diagram failed the orthogonality/idempotence check")
		}
		if n := len(res.RoutingFailures); n > 0 {
			logger.Debugf("%d edge(s) fell back to A* routing", n)
		}
		xmlBytes = xmlout.Render(g, res.Diagram)
		_ = ch.Set(ctx, artifactKey, xmlBytes, cache.TTLArtifact)
		spinner.Stop()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".bpmn.xml"
	}
	if err := os.WriteFile(outputPath, xmlBytes, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	logger.Debugf("layout completed in %s", time.Since(start).Round(time.Millisecond))
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Index()), len(g.Edges), cacheHit)
	return nil
}

// layoutKeyOpts projects the subset of pipeline.Options that change the
// computed diagram into the cache's key-relevant struct.
func layoutKeyOpts(opts pipeline.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		HorizontalGap:     opts.HorizontalGap,
		VerticalGap:       opts.VerticalGap,
		ContainerPadding:  opts.ContainerPadding,
		Compact:           opts.Compact,
		CompactDependency: opts.CompactDependency,
		RefineWithSolver:  opts.Refine,
	}
}
