package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type doc struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "resource.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestSafeParse_OK(t *testing.T) {
	path := writeTemp(t, "name: architect\nkind: agent\n")
	var d doc
	if err := SafeParse(path, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "architect" || d.Kind != "agent" {
		t.Errorf("unexpected decode: %+v", d)
	}
}

func TestSafeParse_TooManyAnchors(t *testing.T) {
	content := "a: &a1 1\nb: &a2 2\nc: &a3 3\nd: &a4 4\n"
	path := writeTemp(t, content)
	var d doc
	if err := SafeParse(path, &d); !errors.Is(err, ErrSecurity) {
		t.Errorf("expected ErrSecurity, got %v", err)
	}
}

func TestSafeParse_RecursiveAnchorAlias(t *testing.T) {
	content := "parent: &parent\n  child: *parent\n"
	path := writeTemp(t, content)
	var d doc
	if err := SafeParse(path, &d); !errors.Is(err, ErrSecurity) {
		t.Errorf("expected ErrSecurity, got %v", err)
	}
}

func TestSafeParse_TooLarge(t *testing.T) {
	content := "name: " + strings.Repeat("a", MaxYAMLSize+1)
	path := writeTemp(t, content)
	var d doc
	if err := SafeParse(path, &d); !errors.Is(err, ErrSecurity) {
		t.Errorf("expected ErrSecurity, got %v", err)
	}
}

func TestSafeParse_NullBytes(t *testing.T) {
	path := writeTemp(t, "name: foo\x00bar\n")
	var d doc
	if err := SafeParse(path, &d); !errors.Is(err, ErrSecurity) {
		t.Errorf("expected ErrSecurity, got %v", err)
	}
}
