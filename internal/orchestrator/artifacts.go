package orchestrator

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iyulab/guidecheck/internal/engine"
)

// StdinArg selects standard input as an artifact.
const StdinArg = "-"

// skipDirs are never descended into when walking a directory.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// sourceExts are the file extensions picked up when walking a directory.
// Files named explicitly are read regardless of extension.
var sourceExts = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
}

// Gather resolves CLI arguments to artifacts. No arguments, or "-", reads
// stdin under stdinName. Directories are walked in lexical order.
//
// A path that does not exist is an error for the whole run. A file that
// exists but cannot be read becomes an artifact carrying Err, so the
// engine reports it and the remaining artifacts are still checked.
func Gather(args []string, stdin io.Reader, stdinName string) ([]engine.Artifact, error) {
	if len(args) == 0 {
		args = []string{StdinArg}
	}
	if stdinName == "" {
		stdinName = "<stdin>"
	}

	var out []engine.Artifact
	seenStdin := false
	for _, arg := range args {
		if arg == StdinArg {
			if seenStdin {
				return nil, fmt.Errorf("stdin given more than once")
			}
			seenStdin = true
			out = append(out, read(stdinName, func() ([]byte, error) { return io.ReadAll(stdin) }))
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, readFile(arg))
			continue
		}

		entries, err := walk(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.err != nil {
				out = append(out, engine.Artifact{Name: e.path, Err: e.err})
				continue
			}
			out = append(out, readFile(e.path))
		}
	}
	return out, nil
}

func readFile(path string) engine.Artifact {
	return read(path, func() ([]byte, error) { return os.ReadFile(path) })
}

func read(name string, load func() ([]byte, error)) engine.Artifact {
	data, err := load()
	if err != nil {
		return engine.Artifact{Name: name, Err: fmt.Errorf("read %s: %w", name, err)}
	}
	return engine.Artifact{Name: name, Data: data}
}

// entry is a walked path. err is set for a subdirectory that could not be
// listed.
type entry struct {
	path string
	err  error
}

func walk(root string) ([]entry, error) {
	var files []entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			files = append(files, entry{path: path, err: fmt.Errorf("walk %s: %w", path, err)})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, entry{path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}
