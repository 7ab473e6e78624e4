package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/debugviz"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
)

// debugCommand creates the debug command group: tools for inspecting the
// layered graph the pipeline builds internally, for diagnosing a bad
// placement without reading through the full BPMN XML.
func (c *CLI) debugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect the pipeline's intermediate layered graph",
	}
	cmd.AddCommand(c.debugDotCommand())
	cmd.AddCommand(c.debugSVGCommand())
	return cmd
}

func (c *CLI) debugDotCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "dot [graph.json]",
		Short: "Write the layered graph as Graphviz DOT",
		Long: `Write the layered graph as Graphviz DOT.

By default the graph is run through the full pipeline first, so a graph
the pipeline rejects fails here with the pipeline's error. The DOT
output is a structural view of the graph: it carries no node positions,
and Graphviz arranges the nodes itself. Pass --raw to skip the pipeline
and dump the graph exactly as decoded, before any sizing or layering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadDebugGraph(args[0], raw)
			if err != nil {
				return err
			}
			dot := debugviz.ToDOT(g)
			out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".dot"
			if err := os.WriteFile(out, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printSuccess("Wrote debug graph")
			printFile(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "skip the pipeline, dump the graph as decoded")
	return cmd
}

func (c *CLI) debugSVGCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "svg [graph.json]",
		Short: "Render the layered graph as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadDebugGraph(args[0], raw)
			if err != nil {
				return err
			}
			svg, err := debugviz.RenderSVG(debugviz.ToDOT(g))
			if err != nil {
				return fmt.Errorf("render svg: %w", err)
			}
			out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".svg"
			if err := os.WriteFile(out, svg, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printSuccess("Wrote debug graph")
			printFile(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "skip the pipeline, dump the graph as decoded")
	return cmd
}

func loadDebugGraph(input string, raw bool) (*model.Graph, error) {
	g, err := elkio.ImportFile(input)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", input, err)
	}
	if raw {
		return g, nil
	}
	if _, err := pipeline.ToBpmn(g, pipeline.DefaultOptions()); err != nil {
		return nil, fmt.Errorf("compute layout: %w", err)
	}
	return g, nil
}
