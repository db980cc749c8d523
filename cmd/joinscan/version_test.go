package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "joinscan version") {
		t.Errorf("missing version line: %s", out)
	}
	if !strings.Contains(out, "commit:") || !strings.Contains(out, "built:") {
		t.Errorf("missing build metadata: %s", out)
	}
}

// TestGetVersion tests the version fallback chain.
func TestGetVersion(t *testing.T) {
	if got := getVersion(); got == "" {
		t.Error("expected a non-empty version")
	}
	if got := getCommit(); got == "" {
		t.Error("expected a non-empty commit")
	}
	if got := getDate(); got == "" {
		t.Error("expected a non-empty date")
	}
}
