package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "game-scripts"
version = "0.1.0"

[source]
dirs = ["modules", "lib"]
entry = "root.main"

[compile]
recursion-limit = 32

[vm]
value-stack-capacity = 1024
call-stack-capacity = 128
step-budget = 100000
`
	if err := os.WriteFile(filepath.Join(dir, "cao-lang.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Project.Name != "game-scripts" {
		t.Errorf("project name = %q, want game-scripts", c.Project.Name)
	}
	if len(c.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(c.Source.Dirs))
	}
	if c.Source.Entry != "root.main" {
		t.Errorf("source entry = %q, want root.main", c.Source.Entry)
	}

	opts := c.CompileOptions()
	if opts.RecursionLimit != 32 {
		t.Errorf("RecursionLimit = %d, want 32", opts.RecursionLimit)
	}

	vmOpts := c.VMOptions()
	if vmOpts.ValueStackCapacity != 1024 {
		t.Errorf("ValueStackCapacity = %d, want 1024", vmOpts.ValueStackCapacity)
	}
	if vmOpts.CallStackCapacity != 128 {
		t.Errorf("CallStackCapacity = %d, want 128", vmOpts.CallStackCapacity)
	}
	if vmOpts.StepBudget != 100000 {
		t.Errorf("StepBudget = %d, want 100000", vmOpts.StepBudget)
	}
}

func TestLoadConfigDefaultsSourceDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cao-lang.toml"), []byte("[project]\nname = \"bare\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Source.Dirs) != 1 || c.Source.Dirs[0] != "src" {
		t.Errorf("Source.Dirs = %v, want [src]", c.Source.Dirs)
	}
}

func TestConfigOptionsFallBackToDefaults(t *testing.T) {
	c := &Config{}
	opts := c.CompileOptions()
	if opts.RecursionLimit == 0 {
		t.Error("RecursionLimit should fall back to the compiler default, not zero")
	}

	vmOpts := c.VMOptions()
	if vmOpts.ValueStackCapacity == 0 || vmOpts.CallStackCapacity == 0 {
		t.Error("stack capacities should fall back to VM defaults, not zero")
	}
	if vmOpts.StepBudget != 0 {
		t.Errorf("StepBudget = %d, want 0 (unbounded default preserved)", vmOpts.StepBudget)
	}
}

func TestFindAndLoadWalksUpToManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "cao-lang.toml"), []byte("[project]\nname = \"nested\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected to find cao-lang.toml in an ancestor directory")
	}
	if c.Project.Name != "nested" {
		t.Errorf("project name = %q, want nested", c.Project.Name)
	}
}

func TestFindAndLoadReturnsNilWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	c, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c != nil {
		t.Error("expected nil Config when no cao-lang.toml exists")
	}
}
