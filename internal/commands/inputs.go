package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// InputSource represents a single source of env file content (file or stdin)
type InputSource struct {
	Path    string // File path or "<stdin>"
	Content []byte
}

// inputOptions controls how processInputs discovers files.
type inputOptions struct {
	Recursive bool
	Patterns  []string // base name globs for files found while walking directories
	Exclude   []string // base names of directories skipped while walking
	Stdin     io.Reader
}

// processInputs determines the env file sources based on arguments and options.
// Paths that cannot be read are logged and skipped; their number is returned
// as failed.
func processInputs(args []string, opts inputOptions, logger *log.Logger) (sources []InputSource, failed int, err error) {
	if len(args) == 0 {
		if !isInputFromPipe() {
			return nil, 0, nil
		}
		return readStdin(opts.Stdin, logger)
	}

	var filePaths []string
	stdinRead := false
	for _, arg := range args {
		// "-" reads stdin; other dash-prefixed names are regular paths.
		if arg == "-" {
			if stdinRead {
				continue
			}
			stdinRead = true
			stdinSources, _, err := readStdin(opts.Stdin, logger)
			if err != nil {
				return nil, 0, err
			}
			sources = append(sources, stdinSources...)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			logger.Warn("Could not stat path", "path", arg, "err", err)
			failed++
			continue
		}

		if !info.IsDir() {
			// Explicit files are sorted whatever their name.
			filePaths = append(filePaths, arg)
			continue
		}

		if !opts.Recursive {
			logger.Warn("Skipping directory (use -r to process recursively)", "path", arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Error accessing path", "path", path, "err", err)
				return nil
			}
			if d.IsDir() {
				if path != arg && matchesAny(d.Name(), opts.Exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(d.Name(), opts.Patterns) {
				filePaths = append(filePaths, path)
			}
			return nil
		})
		if err != nil {
			logger.Warn("Error walking directory", "path", arg, "err", err)
		}
	}

	seen := make(map[string]bool)
	for _, path := range filePaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			logger.Warn("Could not get absolute path", "path", path, "err", err)
			absPath = path
		}
		if seen[absPath] {
			continue
		}
		seen[absPath] = true

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read file", "path", path, "err", err)
			failed++
			continue
		}
		if len(content) == 0 {
			logger.Warn("Skipping empty file", "path", path)
			continue
		}
		sources = append(sources, InputSource{Path: path, Content: content})
	}

	return sources, failed, nil
}

func readStdin(r io.Reader, logger *log.Logger) ([]InputSource, int, error) {
	logger.Debug("Reading from stdin")
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(content) == 0 {
		return nil, 0, nil
	}
	return []InputSource{{Path: stdinPath, Content: content}}, 0, nil
}

// matchesAny reports whether name matches one of the glob patterns.
// Malformed patterns never match.
func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
