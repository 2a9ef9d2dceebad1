package reset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFactoryResetRemovesKnownStateOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "config.yaml"))
	touch(t, filepath.Join(dir, "profile.json"))
	touch(t, filepath.Join(dir, "audit.log"))
	touch(t, filepath.Join(dir, "audit-2026-08-29T02-30-00.000.log"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o700); err != nil {
		t.Fatal(err)
	}

	result, err := FactoryReset(dir)
	if err != nil {
		t.Fatalf("FactoryReset: %v", err)
	}

	sort.Strings(result.Deleted)
	wantDeleted := []string{
		filepath.Join(dir, "audit-2026-08-29T02-30-00.000.log"),
		filepath.Join(dir, "audit.log"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "profile.json"),
	}
	if diff := cmp.Diff(wantDeleted, result.Deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("unknown file must survive a reset")
	}
	if _, err := os.Stat(filepath.Join(dir, "subdir")); err != nil {
		t.Error("directories must survive a reset")
	}
	if len(result.Skipped) != 2 {
		t.Errorf("skipped = %v, want the unknown file and the directory", result.Skipped)
	}
}

func TestFactoryResetMissingDirIsNoop(t *testing.T) {
	result, err := FactoryReset(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("FactoryReset: %v", err)
	}
	if len(result.Deleted) != 0 || len(result.Skipped) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}
