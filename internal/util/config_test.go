package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectFileMissingIsFine(t *testing.T) {
	c := Configuration{RootPath: t.TempDir()}
	if err := c.LoadProjectFile(); err != nil {
		t.Fatalf("missing soli.toml should not error: %v", err)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := "[database]\ndriver = \"sqlite3\"\ndsn = \"app.db\"\n"
	if err := os.WriteFile(filepath.Join(dir, "soli.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Configuration{RootPath: dir}
	if err := c.LoadProjectFile(); err != nil {
		t.Fatalf("LoadProjectFile: %v", err)
	}
	if c.Database.Driver != "sqlite3" || c.Database.DSN != "app.db" {
		t.Errorf("database config not loaded: %+v", c.Database)
	}
}

func TestLoadProjectFileInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "soli.toml"), []byte("[database\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Configuration{RootPath: dir}
	if err := c.LoadProjectFile(); err == nil {
		t.Fatal("expected error for malformed toml")
	}
}
