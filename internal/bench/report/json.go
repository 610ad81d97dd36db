package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
)

const timestampLayout = "20060102_150405"

// FileName is the output name for one engine's run, e.g.
// brave_results_20250102_150405.json.
func FileName(api string, ts time.Time) string {
	return fmt.Sprintf("%s_results_%s.json", api, ts.UTC().Format(timestampLayout))
}

// WriteJSON writes run into dir and returns the file path. The file appears
// under its final name only once fully written; on error nothing is left
// behind.
func WriteJSON(run *runner.BenchmarkRun, dir string) (string, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(run.API, run.Timestamp))
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadJSON(path string) (*runner.BenchmarkRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var run runner.BenchmarkRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &run, nil
}
