// Package integration runs the built micals binary against fixture files and
// snapshots its output.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

var (
	binaryPath  string
	coverageDir string
)

func TestMain(m *testing.M) {
	// Build the binary once before running tests
	tmpDir, err := os.MkdirTemp("", "micals-test")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "micals")

	// Create coverage directory in project root for persistent coverage data
	// If GOCOVERDIR is set externally, use that; otherwise use "./coverage"
	coverageDir = os.Getenv("GOCOVERDIR")
	if coverageDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			panic("failed to get working directory: " + err.Error())
		}
		coverageDir = filepath.Join(wd, "..", "..", "coverage")
	}
	coverageDir, err = filepath.Abs(coverageDir)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to get absolute coverage directory path: " + err.Error())
	}
	if err := os.MkdirAll(coverageDir, 0o750); err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to create coverage directory: " + err.Error())
	}

	cmd := exec.Command("go", "build", "-cover", "-o", binaryPath, "github.com/mica-lang/micals/cmd/micals")
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to build binary: " + string(out))
	}

	code := m.Run()

	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name     string
		dir      string
		args     []string
		wantExit int
	}{
		{"clean-json", "clean", []string{"--format", "json"}, 0},
		{"broken-json", "broken", []string{"--format", "json"}, 1},
		{"broken-sarif", "broken", []string{"--format", "sarif"}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := filepath.Join("testdata", tc.dir, "main.mica")

			args := append([]string{"check"}, tc.args...)
			args = append(args, fixture)
			cmd := exec.Command(binaryPath, args...)
			cmd.Env = append(os.Environ(),
				"GOCOVERDIR="+coverageDir,
			)
			output, err := cmd.CombinedOutput()

			if tc.wantExit != 0 && err == nil {
				t.Errorf("expected exit code %d, got 0", tc.wantExit)
			}
			if tc.wantExit == 0 && err != nil {
				t.Errorf("expected success, got %v\noutput: %s", err, output)
			}

			snaps.WithConfig(snaps.Ext(".json")).MatchStandaloneSnapshot(t, string(output))
		})
	}
}

func TestCheckDirectory(t *testing.T) {
	cmd := exec.Command(binaryPath, "check", "--format", "json", "testdata")
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
	)
	output, _ := cmd.CombinedOutput()
	snaps.WithConfig(snaps.Ext(".json")).MatchStandaloneSnapshot(t, string(output))
}

func TestVersion(t *testing.T) {
	cmd := exec.Command(binaryPath, "version")
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("version command failed: %v\noutput: %s", err, output)
	}

	if len(output) == 0 {
		t.Error("expected version output, got empty")
	}
}
