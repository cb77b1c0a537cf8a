package patcher

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

type zipEntry struct {
	Name string
	Body string
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("writing zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// newInstall creates <tmp>/Hearthstone with the marker file in place.
func newInstall(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), ProductDirName)
	writeMarker(t, root)
	return root
}

func writeMarker(t *testing.T, root string) {
	t.Helper()
	managed := filepath.Join(root, DataDirName, ManagedDirName)
	if err := os.MkdirAll(managed, 0o755); err != nil {
		t.Fatalf("creating managed dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(managed, MarkerFileName), []byte("marker"), 0o644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}
}

func mustTarget(t *testing.T, root string) Target {
	t.Helper()
	target, err := NewTarget(root)
	if err != nil {
		t.Fatalf("NewTarget(%q): %v", root, err)
	}
	return target
}

// snapshot maps every regular file below root to its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return files
}
