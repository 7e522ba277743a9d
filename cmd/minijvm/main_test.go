package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestClassRoot(t *testing.T) {
	tests := []struct {
		path, class, want string
	}{
		{"Hello.class", "Hello", "."},
		{"out/Hello.class", "Hello", "out"},
		{"out/com/example/Main.class", "com/example/Main", "out"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			if got := classRoot(filepath.FromSlash(tt.path), tt.class); got != filepath.FromSlash(tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountFlag(t *testing.T) {
	var v countFlag
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&v, "v", "")
	if err := fs.Parse([]string{"-v", "-v", "-v"}); err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Errorf("-v -v -v: got %d, want 3", v)
	}
	if err := fs.Parse([]string{"-v=5"}); err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Errorf("-v=5: got %d, want 5", v)
	}
}

func TestFindJmodPath(t *testing.T) {
	home := t.TempDir()
	jmod := filepath.Join(home, "jmods", "java.base.jmod")
	if err := os.MkdirAll(filepath.Dir(jmod), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jmod, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JAVA_BASE_JMOD", "")
	t.Setenv("JAVA_HOME", home)

	if got := findJmodPath("flag.jmod", "config.jmod"); got != "flag.jmod" {
		t.Errorf("flag: got %q", got)
	}
	if got := findJmodPath("", "config.jmod"); got != "config.jmod" {
		t.Errorf("config: got %q", got)
	}
	if got := findJmodPath("", ""); got != jmod {
		t.Errorf("JAVA_HOME: got %q, want %q", got, jmod)
	}
	t.Setenv("JAVA_BASE_JMOD", "env.jmod")
	if got := findJmodPath("", ""); got != "env.jmod" {
		t.Errorf("JAVA_BASE_JMOD: got %q", got)
	}
}
