package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	ocio "github.com/ocifkit/ocifkit/pkg/io"
	"github.com/ocifkit/ocifkit/pkg/pipeline"
)

// exportOpts holds the command-line flags for the export command.
// Unset flags fall back to the config file.
type exportOpts struct {
	output    string  // output file (single format) or directory
	formats   string  // comma-separated output formats
	connector string  // straight or curved
	engine    string  // graphviz layout engine: dot or neato
	pinned    bool    // pin graphviz nodes to diagram positions
	labels    bool    // label graphviz edges with relation types
	scale     float64 // PNG scale factor
	noCache   bool    // disable caching
	refresh   bool    // recompute and overwrite cached entries
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export an OCIF document as a diagram",
		Long: `Validate an OCIF document, lay it out and write it in one or more formats.

Formats:
  svg       standalone SVG drawing
  tldraw    tldraw file (.tldr)
  canvas    JSON Canvas file (.canvas)
  dot       Graphviz DOT source
  graphviz  SVG rendered by Graphviz
  layout    computed layout as JSON
  pdf, png  converted from the SVG drawing (requires rsvg-convert)

Artifacts are written next to the input unless --output is given. With a
single format, --output may name the file itself.`,
		Example: `  ocifkit export diagram.ocif.json
  ocifkit export -f svg,tldraw,canvas -o out/ diagram.ocif.json
  ocifkit export -f png --scale 3 -o diagram.png diagram.ocif.json5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.exportPipelineOptions(cmd, opts)
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts, popts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or directory")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated (default from config, else svg)")
	cmd.Flags().StringVar(&opts.connector, "connector", "", "relation connector: straight, curved")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz engine: dot, neato")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "pin graphviz nodes to the diagram layout")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label graphviz edges")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// exportPipelineOptions merges the flags the user set over the config.
func (c *CLI) exportPipelineOptions(cmd *cobra.Command, opts exportOpts) pipeline.Options {
	popts := c.cfg().PipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("format") {
		popts.Formats = pipeline.ParseFormats(opts.formats)
	}
	if flags.Changed("connector") {
		popts.Connector = opts.connector
	}
	if flags.Changed("engine") {
		popts.Engine = opts.engine
	}
	if flags.Changed("pinned") {
		popts.Pinned = opts.pinned
	}
	if flags.Changed("labels") {
		popts.Labels = opts.labels
	}
	if flags.Changed("scale") {
		popts.PNGScale = opts.scale
	}
	popts.Refresh = opts.refresh
	return popts
}

func (c *CLI) runExport(ctx context.Context, stdout, stderr io.Writer, input string, opts exportOpts, popts pipeline.Options) error {
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	paths, err := outputPaths(input, opts.output, popts.Formats)
	if err != nil {
		return err
	}

	src, err := ocio.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts.Logger = loggerFromContext(ctx)
	prog := newProgress(popts.Logger)
	spinner := newSpinner(ctx, stderr, "Exporting "+filepath.Base(input)+"...")
	spinner.Start()
	result, err := runner.Export(ctx, src, popts)
	if err != nil {
		var invalid *pipeline.InvalidDocumentError
		if errors.As(err, &invalid) {
			spinner.Stop()
			writeTextReport(stderr, fileReport{File: input, Result: invalid.Report})
			return err
		}
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()

	u := newUI(stdout)
	for _, w := range result.Diagram.Warnings {
		u.warning("%s", w)
	}

	for _, format := range popts.Formats {
		if err := ocio.WriteFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Exported %s", filepath.Base(input)))

	u.success("Exported %d %s", len(popts.Formats), pluralize(len(popts.Formats), "artifact", "artifacts"))
	for _, format := range popts.Formats {
		u.file(paths[format])
	}
	cache := result.CacheInfo
	u.diagramStats(result.Stats.NodeCount, result.Stats.RelationCount, cache.ValidationHit && cache.LayoutHit && cache.RenderHit)
	return nil
}

// outputPaths maps each format to the file it is written to. An output with
// an extension names the file itself and requires a single format; any other
// output is a directory.
func outputPaths(input, output string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if output != "" && filepath.Ext(output) != "" {
		if len(formats) != 1 {
			return nil, ocerrors.New(ocerrors.ErrCodeInvalidInput, "--output %s names a file but %d formats were requested; pass a directory instead", output, len(formats))
		}
		paths[formats[0]] = output
		return paths, nil
	}
	for _, format := range formats {
		info, ok := pipeline.Info(format)
		if !ok {
			return nil, pipeline.ValidateFormat(format)
		}
		paths[format] = ocio.OutputPath(input, output, info.Extension)
	}
	return paths, nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
