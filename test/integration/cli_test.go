//go:build integration
// +build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func getProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "../.."
	}
	// Walk up until we find go.mod
	for dir != "/" {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return "../.."
}

func getBinaryPath(t *testing.T) string {
	t.Helper()

	// Use pre-built binary from CI or build locally
	binaryPath := os.Getenv("LABELSYNC_BINARY")
	if binaryPath == "" {
		binaryPath = filepath.Join(t.TempDir(), "labelsync-test")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/labelsync")
		buildCmd.Dir = getProjectRoot()
		var buildOut bytes.Buffer
		buildCmd.Stdout = &buildOut
		buildCmd.Stderr = &buildOut
		if err := buildCmd.Run(); err != nil {
			t.Fatalf("Failed to build binary: %v\nOutput: %s", err, buildOut.String())
		}
	} else if !filepath.IsAbs(binaryPath) {
		// Convert relative path to absolute path from project root
		binaryPath = filepath.Join(getProjectRoot(), binaryPath)
	}

	return binaryPath
}

// cleanEnv drops variables that would make the binary talk to GitHub
func cleanEnv(home string) []string {
	var env []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "INPUT_") || strings.HasPrefix(name, "GITHUB_") || strings.HasPrefix(name, "LABELSYNC_") || name == "HOME" {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "HOME="+home)
}

func TestCLIIntegration(t *testing.T) {
	binaryPath := getBinaryPath(t)

	dir := t.TempDir()
	valid := filepath.Join(dir, "labels.json")
	if err := os.WriteFile(valid, []byte(`{"colors": {"red": "#ff0000"}, "labels": {"bug": {"color": "red", "description": "Broken"}}}`), 0644); err != nil {
		t.Fatalf("Failed to write label file: %v", err)
	}
	invalid := filepath.Join(dir, "invalid.yml")
	if err := os.WriteFile(invalid, []byte("labels:\n  - name: bug\n    color: purple\n    description: x\n"), 0644); err != nil {
		t.Fatalf("Failed to write label file: %v", err)
	}

	tests := []struct {
		name        string
		args        []string
		expected    string
		expectError bool
	}{
		{
			name:     "no arguments (shows help)",
			args:     []string{},
			expected: "labelsync",
		},
		{
			name:     "help command",
			args:     []string{"--help"},
			expected: "labelsync",
		},
		{
			name:     "sync help",
			args:     []string{"sync", "--help"},
			expected: "--remote-file",
		},
		{
			name:     "validate valid file",
			args:     []string{"validate", valid},
			expected: "Label file is valid",
		},
		{
			name:        "validate invalid file",
			args:        []string{"validate", invalid},
			expected:    "unknown color",
			expectError: true,
		},
		{
			name:        "sync without repository",
			args:        []string{"sync", "--file", valid, "--dry-run"},
			expected:    "repository is required",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			cmd.Env = cleanEnv(t.TempDir())
			var out bytes.Buffer
			cmd.Stdout = &out
			cmd.Stderr = &out

			err := cmd.Run()
			if tt.expectError && err == nil {
				t.Fatalf("Expected command to fail, output: %s", out.String())
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Command failed: %v\nOutput: %s", err, out.String())
			}

			output := out.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain '%s', got: %s", tt.expected, output)
			}
		})
	}
}
