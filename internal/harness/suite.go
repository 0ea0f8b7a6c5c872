package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/sqliteurl/internal/store"
)

// scenarioExts are the file extensions FindScenarios collects.
var scenarioExts = map[string]bool{".yaml": true, ".yml": true, ".cue": true}

// FindScenarios expands paths into scenario files. Directories are walked
// recursively; files are taken as given. filter, when set, is a glob matched
// against the file name without extension. The result is in walk order.
func FindScenarios(paths []string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	keep := func(path string) {
		ext := filepath.Ext(path)
		if !scenarioExts[ext] {
			return
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return
			}
		}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			keep(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				keep(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ScenarioReport is the outcome of one scenario file within a suite.
type ScenarioReport struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Pass    bool     `json:"pass"`
	Skipped bool     `json:"skipped,omitempty"`
	Golden  string   `json:"golden,omitempty"` // "match", "updated" or "" when no golden file exists
	Errors  []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a suite run.
type SuiteResult struct {
	Scenarios []ScenarioReport `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Total     int              `json:"total"`
}

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// Driver is used by scenarios that do not pin one.
	Driver store.Driver

	// UpdateGolden rewrites golden files instead of comparing them.
	UpdateGolden bool
}

// RunSuite loads and runs every file, comparing against golden files where
// they exist. Load and execution failures count as scenario failures; the
// returned error is reserved for context cancellation.
func RunSuite(ctx context.Context, files []string, opts SuiteOptions) (*SuiteResult, error) {
	result := &SuiteResult{
		Scenarios: make([]ScenarioReport, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report := runFile(ctx, file, opts)
		switch {
		case report.Skipped:
			result.Skipped++
		case report.Pass:
			result.Passed++
		default:
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, report)
	}
	return result, nil
}

func runFile(ctx context.Context, file string, opts SuiteOptions) ScenarioReport {
	report := ScenarioReport{Path: file, Name: filepath.Base(file)}
	fail := func(format string, args ...any) ScenarioReport {
		report.Pass = false
		report.Errors = append(report.Errors, fmt.Sprintf(format, args...))
		return report
	}

	scenario, err := LoadScenario(file)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	report.Name = scenario.Name

	result, err := Run(ctx, scenario, opts.Driver)
	if err != nil {
		return fail("execution failed: %v", err)
	}
	if result.Skipped {
		report.Pass = true
		report.Skipped = true
		return report
	}
	report.Pass = result.Pass
	report.Errors = append(report.Errors, result.Errors...)

	if opts.UpdateGolden {
		if err := WriteGolden(file, scenario, result); err != nil {
			return fail("failed to update golden file: %v", err)
		}
		report.Golden = "updated"
		return report
	}

	match, err := CompareGolden(file, scenario, result)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return report
	case err != nil:
		return fail("golden comparison failed: %v", err)
	case !match:
		return fail("trace does not match golden file (run with --update to regenerate)")
	}
	report.Golden = "match"
	return report
}
