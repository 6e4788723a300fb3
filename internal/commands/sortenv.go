package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/tjun/sortenv/internal/config"
	"github.com/tjun/sortenv/internal/diff"
	"github.com/tjun/sortenv/internal/sorter"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const stdinPath = "<stdin>"

const usageHint = `sortenv: sorts .env files while keeping comments attached to the entries
Usage: sortenv [--overwrite] <file>...  (see --help)`

// GetFlags returns the flags for the sortenv command. urfave/cli keeps parse
// state inside flag values, so every call builds new ones.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "Show help",
		},
		&cli.BoolFlag{
			Name:    "overwrite",
			Aliases: []string{"w"},
			Usage:   "Rewrite files in place instead of printing to stdout (required for multiple files)",
		},
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"r"},
			Usage:   "Walk directories recursively and process files matching the configured patterns",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Exit with non-zero status if changes would be made",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "Print the changes sorting would make instead of the sorted content",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of files processed concurrently (default: number of CPUs)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to an HCL config `FILE` (default: " + config.DefaultFile + " if present)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log every processed file",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
	}
}

// NewCommand builds the root sortenv command. The built-in help is disabled
// so that -h is handled by SortenvAction wherever it appears on the command line.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "sortenv",
		Usage:     "Sorts .env files while keeping comments attached to the entries",
		UsageText: "sortenv [flags] [path ...]   (use - to read stdin)",
		HideHelp:  true,
		Flags:     GetFlags(),
		Action:    SortenvAction,
	}
}

// result is the outcome of sorting a single input.
type result struct {
	source  InputSource
	sorted  []byte
	changed bool
	err     error
}

// SortenvAction defines the core action for the sortenv command.
func SortenvAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	if cmd.Bool("help") || slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		return showHelp(cmd)
	}

	logger := newLogger(cmd)

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	overwrite := boolSetting(cmd, "overwrite", cfg.Overwrite)
	recursive := boolSetting(cmd, "recursive", cfg.Recursive)
	dryRun := cmd.Bool("dry-run")
	showDiff := cmd.Bool("diff")

	jobs := cfg.JobLimit()
	if cmd.IsSet("jobs") {
		n := int(cmd.Int("jobs"))
		if n < 0 {
			return cli.Exit(fmt.Sprintf("Error: --jobs must not be negative, got %d", n), 2)
		}
		if n > 0 {
			jobs = n
		}
	}

	if len(args) == 0 && !isInputFromPipe() {
		return cli.Exit(usageHint, 1)
	}

	sources, failed, err := processInputs(args, inputOptions{
		Recursive: recursive,
		Patterns:  cfg.Patterns,
		Exclude:   cfg.Exclude,
		Stdin:     reader(cmd),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to process inputs: %w", err)
	}

	writes := overwrite && !dryRun && !showDiff
	if len(sources) > 1 && !overwrite && !dryRun && !showDiff {
		return cli.Exit("Multiple files can be processed only with -w (--overwrite), --dry-run or --diff.", 2)
	}

	if len(sources) == 0 {
		if failed > 0 {
			return cli.Exit("Encountered errors during processing.", 2)
		}
		logger.Warn("No input files found.")
		return nil
	}

	results, err := sortSources(ctx, sources, jobs, writes, logger)
	if err != nil {
		return fmt.Errorf("failed to sort inputs: %w", err)
	}

	out := writer(cmd)
	hasErrors := failed > 0
	changedInDryRun := false
	written := 0

	for _, res := range results {
		path := res.source.Path

		if res.err != nil {
			logger.Error("Failed to sort file", "path", path, "err", res.err)
			hasErrors = true
			continue
		}
		if dryRun && res.changed {
			changedInDryRun = true
			logger.Warn("File would be changed", "path", path)
		}

		switch {
		case showDiff:
			if res.changed {
				if _, err := io.WriteString(out, diff.Lines(path, string(res.source.Content), string(res.sorted))); err != nil {
					logger.Error("Failed to write diff", "path", path, "err", err)
					hasErrors = true
				}
			}
		case dryRun:
			// Nothing is written.
		case writes && path != stdinPath:
			if res.changed {
				written++
				logger.Debug("Formatted", "path", path)
			} else {
				logger.Debug("No changes", "path", path)
			}
		default:
			if writes {
				logger.Warn("Cannot overwrite stdin input, writing to stdout instead.")
			}
			if _, err := out.Write(res.sorted); err != nil {
				logger.Error("Failed to write to stdout", "path", path, "err", err)
				hasErrors = true
			}
		}
	}

	if hasErrors {
		return cli.Exit("Encountered errors during processing.", 2)
	}

	if writes && written > 0 {
		logger.Info("Files were overwritten successfully", "count", written)
	}

	if dryRun && changedInDryRun {
		return cli.Exit("Changes would be made.", 1)
	}

	return nil
}

// sortSources sorts every source on a bounded number of goroutines. When
// writes is set, files are re-read, sorted and rewritten under a lock by the
// goroutine handling them. Results keep the order of sources.
func sortSources(ctx context.Context, sources []InputSource, jobs int, writes bool, logger *log.Logger) ([]result, error) {
	results := make([]result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Debug("Processing", "path", source.Path)

			if writes && source.Path != stdinPath {
				// Re-read under the lock; the discovered content may be stale.
				content, sorted, err := sortFileLocked(gctx, source.Path)
				if err != nil {
					results[i] = result{source: source, err: err}
					return nil
				}
				source.Content = content
				results[i] = result{source: source, sorted: sorted, changed: !bytes.Equal(content, sorted)}
				return nil
			}

			sorted := []byte(sorter.Sort(string(source.Content)))
			res := result{
				source:  source,
				sorted:  sorted,
				changed: !bytes.Equal(source.Content, sorted),
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// boolSetting prefers an explicitly set flag over the config file value.
func boolSetting(cmd *cli.Command, name string, fromConfig *bool) bool {
	if !cmd.IsSet(name) && fromConfig != nil {
		return *fromConfig
	}
	return cmd.Bool(name)
}

// showHelp prints usage and flags to the error writer; stdout only ever
// carries sorted content.
func showHelp(cmd *cli.Command) error {
	root := cmd.Root()
	w := errWriter(cmd)

	fmt.Fprintf(w, "%s - %s\n\nUSAGE:\n   %s\n\nOPTIONS:\n", root.Name, root.Usage, root.UsageText)
	for _, f := range root.Flags {
		fmt.Fprintf(w, "   %s\n", f.String())
	}
	return nil
}

func errWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

func newLogger(cmd *cli.Command) *log.Logger {
	logger := log.NewWithOptions(errWriter(cmd), log.Options{
		Prefix: "sortenv",
	})
	switch {
	case cmd.Bool("verbose"):
		logger.SetLevel(log.DebugLevel)
	case cmd.Bool("quiet"):
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func reader(cmd *cli.Command) io.Reader {
	if root := cmd.Root(); root.Reader != nil {
		return root.Reader
	}
	return os.Stdin
}

// isInputFromPipe checks if the program is receiving input from a pipe.
var isInputFromPipe = func() bool {
	fileInfo, _ := os.Stdin.Stat()
	return fileInfo != nil && (fileInfo.Mode()&os.ModeCharDevice) == 0
}
