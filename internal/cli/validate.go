package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	ocio "github.com/ocifkit/ocifkit/pkg/io"
	"github.com/ocifkit/ocifkit/pkg/pipeline"
)

// validateOpts holds the command-line flags for the validate command.
type validateOpts struct {
	report      string // report format: text, json or yaml
	jobs        int    // files checked concurrently
	interactive bool   // browse errors in a terminal UI
	watch       bool   // re-validate when a file changes
	noCache     bool   // skip the validation cache
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	opts := validateOpts{report: reportText, jobs: defaultJobs}

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check OCIF documents against the schema",
		Long: `Check OCIF documents against the OCIF JSON schema.

Documents may be JSON or JSON5. Every schema violation is reported with its
JSON path, line and column, and the offending source line. The command fails
if any document is invalid.`,
		Example: `  ocifkit validate diagram.ocif.json
  ocifkit validate --report json *.json
  ocifkit validate --watch diagram.ocif.json5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateReportFormat(opts.report); err != nil {
				return err
			}
			if opts.jobs < 1 {
				return ocerrors.New(ocerrors.ErrCodeInvalidInput, "--jobs must be at least 1")
			}
			if opts.interactive && opts.watch {
				return ocerrors.New(ocerrors.ErrCodeInvalidInput, "--interactive and --watch cannot be combined")
			}
			return c.runValidate(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.report, "report", "r", opts.report, "report format: text, json, yaml")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of files checked concurrently")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse errors interactively")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-validate files when they change")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, w io.Writer, files []string, opts validateOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.watch {
		return watchFiles(ctx, files, func(changed []string) {
			reports, err := checkFiles(ctx, runner, changed, opts.jobs)
			if err != nil {
				loggerFromContext(ctx).Error("validate", "err", err)
				return
			}
			if err := writeReports(w, opts.report, reports); err != nil {
				loggerFromContext(ctx).Error("write report", "err", err)
			}
		})
	}

	prog := newProgress(loggerFromContext(ctx))
	reports, err := checkFiles(ctx, runner, files, opts.jobs)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d files", len(files)))

	if opts.interactive {
		if err := browseReports(reports); err != nil {
			return err
		}
	} else if err := writeReports(w, opts.report, reports); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := summarize(reports); err != nil {
		return err
	}
	if !opts.interactive && opts.report == reportText && len(files) == 1 {
		newUI(w).nextStep("Export it", "ocifkit export "+files[0])
	}
	return nil
}

// checkFiles validates files concurrently, at most jobs at a time. Reports
// keep the order of files. A file that cannot be read is recorded in its
// report; only cancellation and validator failures abort the run.
func checkFiles(ctx context.Context, runner *pipeline.Runner, files []string, jobs int) ([]fileReport, error) {
	logger := loggerFromContext(ctx)
	reports := make([]fileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = fileReport{File: path}
			src, err := ocio.ReadFile(path)
			if err != nil {
				reports[i].Err = err
				return nil
			}
			res, hit, err := runner.ValidateWithCacheInfo(gctx, src, pipeline.Options{})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("checked", "file", path, "valid", res.Valid, "errors", len(res.Errors), "cached", hit)
			reports[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// summarize returns an error when any report is not valid.
func summarize(reports []fileReport) error {
	failed := 0
	for _, r := range reports {
		if r.Err != nil || !r.Valid {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	if len(reports) == 1 {
		if reports[0].Err != nil {
			return reports[0].Err
		}
		return ocerrors.New(ocerrors.ErrCodeInvalidDocument, "%s is not a valid OCIF document", reports[0].File)
	}
	return ocerrors.New(ocerrors.ErrCodeInvalidDocument, "%d of %d documents are invalid", failed, len(reports))
}
