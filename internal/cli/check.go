package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"grammarcheck/internal/config"
	"grammarcheck/internal/controller"
	"grammarcheck/internal/filewalker"
	"grammarcheck/internal/host"
	"grammarcheck/internal/ignorelist"
	"grammarcheck/internal/problem"
	"grammarcheck/internal/textpos"
	"grammarcheck/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var (
		flags   checkFlags
		exclude []string
	)
	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check files and report language problems",
		Long: `Checks every given file, every supported file (.txt .md .markdown .tex .rst)
under the given directories and every file matching the given glob patterns.
Exits with status 1 when problems are found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args, flags, exclude)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Glob patterns of paths to skip inside directories")
	return cmd
}

// fileReport holds the open problems of one checked file with their
// regions at the end of the check.
type fileReport struct {
	Path     string
	Text     []rune
	Problems []*problem.Problem
	Regions  []problem.Region
}

// runCheck handles the `check` command.
func runCheck(out io.Writer, args []string, flags checkFlags, exclude []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	server, err := flags.apply(cfg)
	if err != nil {
		return err
	}

	files, err := filewalker.NewWalker(exclude...).Collect(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Msg("No files to check")
		return nil
	}

	ignored, release, err := openIgnoreList(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	return checkFiles(ctx, out, newClient(cfg), ignored, sessionOptions(cfg), server, files, cfg.WorkerCount)
}

// checkFiles checks files in parallel and prints their problems in file
// order.
func checkFiles(ctx context.Context, out io.Writer, checker controller.Checker, ignored *ignorelist.List,
	opts controller.Options, server string, files []filewalker.FileEntry, workers int) error {
	// There is no selection on the command line.
	opts.CheckSelectionOnly = false

	log.Info().Int("files", len(files)).Int("workers", workers).Str("server", server).Msg("Checking files")

	pool := worker.NewPool[filewalker.FileEntry, *fileReport](workers,
		func(ctx context.Context, f filewalker.FileEntry) (*fileReport, error) {
			return checkFile(ctx, checker, ignored, opts, server, f)
		}).OnProgress(func(done, total int) {
		log.Debug().Int("done", done).Int("total", total).Msg("Checked file")
	})
	tasks := pool.Execute(ctx, files)

	found, failed, checked := 0, 0, 0
	for _, task := range tasks {
		if task.Skipped {
			continue
		}
		checked++
		if task.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: %s\n", locationColor.Sprint(task.Input.Path), controller.Describe(task.Err))
			continue
		}
		report := task.Result
		lines := textpos.NewMap(string(report.Text))
		for i, p := range report.Problems {
			renderProblem(out, report.Path, lines, report.Text, p, report.Regions[i])
		}
		found += len(report.Problems)
	}
	renderSummary(out, checked, found)

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be checked", failed, len(files))
	}
	if found > 0 {
		return errProblemsFound
	}
	return nil
}

func checkFile(ctx context.Context, checker controller.Checker, ignored *ignorelist.List,
	opts controller.Options, server string, f filewalker.FileEntry) (*fileReport, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	h := host.NewMemory(string(data), host.WithScopes(scopesFor(f.Ext)))
	session := controller.NewSession(h, ignored, opts)
	if _, err := session.Check(ctx, checker, server); err != nil {
		return nil, fmt.Errorf("check %s: %w", f.Path, err)
	}

	report := &fileReport{Path: f.Path, Text: []rune(h.Text())}
	for _, p := range session.Problems() {
		if !session.IsOpen(p) {
			continue
		}
		report.Problems = append(report.Problems, p)
		report.Regions = append(report.Regions, h.Regions(p.Key)[0])
	}
	return report, nil
}
