package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	runsDir        = "runs"
	latestLink     = "latest"
	latestFallback = "latest.txt"
	runDirLayout   = "2006-01-02_150405"

	InitialPromptFile = "initial_prompt.txt"
	FinalPromptFile   = "final_prompt.txt"
	ConfigFile        = "config.json"
	ResultsFile       = "results.json"
)

// Artifacts lays out per-run files under <root>/runs/<case>/<stamp>_<runid>.
type Artifacts struct {
	root string
}

func NewArtifacts(root string) *Artifacts {
	return &Artifacts{root: root}
}

func (a *Artifacts) Root() string { return a.root }

// RunDir is an open run directory.
type RunDir struct {
	Path string
	// Rel is Path relative to the results root, as stored in run records.
	Rel string
}

func (a *Artifacts) Create(caseName, runID string, at time.Time) (*RunDir, error) {
	caseDir := filepath.Join(a.root, runsDir, caseName)
	path := filepath.Join(caseDir, at.Format(runDirLayout)+"_"+runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	rel, err := filepath.Rel(a.root, path)
	if err != nil {
		rel = path
	}
	if err := updateLatest(caseDir, filepath.Base(path)); err != nil {
		slog.Warn("could not update latest run pointer", "case", caseName, "error", err)
	}
	return &RunDir{Path: path, Rel: rel}, nil
}

// updateLatest points <caseDir>/latest at name. Where symlinks are not
// available the name is written to latest.txt instead.
func updateLatest(caseDir, name string) error {
	link := filepath.Join(caseDir, latestLink)
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old link: %w", err)
	}
	if err := os.Symlink(name, link); err == nil {
		return nil
	}
	return os.WriteFile(filepath.Join(caseDir, latestFallback), []byte(name+"\n"), 0o644)
}

// Latest resolves the most recent run directory of caseName.
func (a *Artifacts) Latest(caseName string) (string, error) {
	caseDir := filepath.Join(a.root, runsDir, caseName)
	if target, err := os.Readlink(filepath.Join(caseDir, latestLink)); err == nil {
		return filepath.Join(caseDir, target), nil
	}
	b, err := os.ReadFile(filepath.Join(caseDir, latestFallback))
	if err != nil {
		return "", fmt.Errorf("no latest run for %q: %w", caseName, err)
	}
	return filepath.Join(caseDir, string(trimNewline(b))), nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func (d *RunDir) WritePrompts(initial, final string) error {
	if err := os.WriteFile(filepath.Join(d.Path, InitialPromptFile), []byte(initial), 0o644); err != nil {
		return fmt.Errorf("write initial prompt: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Path, FinalPromptFile), []byte(final), 0o644); err != nil {
		return fmt.Errorf("write final prompt: %w", err)
	}
	return nil
}

func (d *RunDir) WriteConfig(v any) error {
	return WriteJSON(v, filepath.Join(d.Path, ConfigFile))
}

func (d *RunDir) WriteResults(r *Report) error {
	return WriteJSON(r, filepath.Join(d.Path, ResultsFile))
}
