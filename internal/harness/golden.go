package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/store"
)

// Snapshot builds the golden form of a result.
//
// Error text differs between drivers, so a failed step records only that it
// failed. Everything else is driver-independent, which lets one golden file
// serve both drivers.
func Snapshot(scenarioName string, result *Result) ir.Object {
	steps := make(ir.List, len(result.Trace))
	for i, step := range result.Trace {
		obj := ir.Object{
			"index": ir.Int(step.Index),
			"sql":   ir.Text(step.SQL),
			"args":  nonNilList(step.Args),
		}
		if step.Name != "" {
			obj["name"] = ir.Text(step.Name)
		}
		if step.Failed() {
			obj["failed"] = ir.Bool(true)
		} else {
			cols := make(ir.List, len(step.Columns))
			for j, c := range step.Columns {
				cols[j] = ir.Text(c)
			}
			rows := make(ir.List, len(step.Rows))
			for j, r := range step.Rows {
				rows[j] = r
			}
			obj["columns"] = cols
			obj["rows"] = rows
			obj["digest"] = ir.Text(step.Digest)
		}
		steps[i] = obj
	}

	return ir.Object{
		"scenario_name": ir.Text(scenarioName),
		"trace_version": ir.Text(ir.TraceVersion),
		"steps":         steps,
	}
}

func nonNilList(l ir.List) ir.List {
	if l == nil {
		return ir.List{}
	}
	return l
}

// MarshalSnapshot encodes the snapshot as canonical JSON plus a newline.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	data, err := ir.MarshalCanonical(Snapshot(scenarioName, result))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// GoldenPath returns the golden file of a scenario file: a golden/
// directory next to it, named after the file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// WriteGolden records result as the golden file of scenarioFile.
func WriteGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	data, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether result matches the golden file of
// scenarioFile. A missing golden file returns os.ErrNotExist.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (bool, error) {
	golden, err := os.ReadFile(GoldenPath(scenarioFile))
	if err != nil {
		return false, err
	}
	current, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal current trace: %w", err)
	}
	return bytes.Equal(golden, current), nil
}

// RunWithGolden executes a scenario file and compares its trace with
// golden/<name>.golden next to it.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioFile string, driver store.Driver) (*Result, error) {
	t.Helper()

	scenario, err := LoadScenario(scenarioFile)
	if err != nil {
		return nil, err
	}
	result, err := Run(t.Context(), scenario, driver)
	if err != nil {
		return nil, err
	}
	if result.Skipped {
		return result, nil
	}

	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if err := AssertGolden(t, filepath.Join(filepath.Dir(scenarioFile), "golden"), name, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result against fixtureDir/goldenName.golden.
func AssertGolden(t *testing.T, fixtureDir, goldenName, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, goldenName, data)
	return nil
}
