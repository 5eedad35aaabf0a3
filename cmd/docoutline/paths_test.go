package main

import (
	"path/filepath"
	"testing"
)

func TestDocumentTitle(t *testing.T) {
	tests := map[string]string{
		"/tmp/in/Annual Report.pdf": "Annual Report",
		"rules.v2.pdf":              "rules.v2",
		"noext":                     "noext",
	}
	for in, want := range tests {
		if got := documentTitle(in); got != want {
			t.Errorf("documentTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestOutputPath(t *testing.T) {
	pdf := filepath.Join("inbox", "manual.pdf")

	if got, want := outputPath(pdf, "", ".json"), filepath.Join("inbox", "manual.json"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := outputPath(pdf, "out", ".md"), filepath.Join("out", "manual.md"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
