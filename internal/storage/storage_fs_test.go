package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSStorage(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFSStorage(root)
	if err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"modules/https/esm.sh/react":             "export * from '/stable/react@18.2.0/es2022/react.mjs';",
		"modules/https/esm.sh/react.meta":        `{"url":"https://esm.sh/react","lang":"js"}`,
		"modules/https/deno.land/x/aleph/mod.ts": "export const version: string = '1.0.0';",
	}
	for key, content := range files {
		if err := fs.Put(key, strings.NewReader(content)); err != nil {
			t.Fatal(err)
		}
	}

	if err := fs.Put("", strings.NewReader("!")); err == nil {
		t.Fatal("Expected an error for an empty key")
	}
	// dot segments can't climb out of the root
	if err := fs.Put("../escape.txt", strings.NewReader("!")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("Expected the file to be kept under the root, got %v", err)
	}

	// overwrite
	if err := fs.Put("modules/https/esm.sh/react", strings.NewReader("export default {};")); err != nil {
		t.Fatal(err)
	}
	r, fi, err := fs.Get("modules/https/esm.sh/react")
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "export default {};" || fi.Size() != int64(len(data)) {
		t.Fatalf("Expected the overwritten content, got '%s' (%d bytes)", data, fi.Size())
	}

	keys, err := fs.List("modules/https/esm.sh")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "modules/https/esm.sh/react,modules/https/esm.sh/react.meta" {
		t.Fatalf("Unexpected keys %v", keys)
	}

	keys, err = fs.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 4 {
		t.Fatalf("Expected 4 keys, got %v", keys)
	}

	keys, err = fs.List("modules/http")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("Expected no keys for a missing prefix, got %v", keys)
	}

	if _, err := fs.Stat("modules/https/esm.sh"); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for a directory, got %v", err)
	}
	if _, _, err := fs.Get("modules/https/esm.sh/react-dom"); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := fs.Stat("modules/https/esm.sh/react/sub"); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for a path under a file, got %v", err)
	}

	deleted, err := fs.DeleteAll("modules/https/deno.land/")
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0] != "modules/https/deno.land/x/aleph/mod.ts" {
		t.Fatalf("Unexpected deleted keys %v", deleted)
	}
	if _, err := fs.DeleteAll("modules/https/deno.land"); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for a deleted prefix, got %v", err)
	}
	if _, err := fs.DeleteAll("/"); err == nil {
		t.Fatal("Expected an error for deleting the root")
	}

	keys, err = fs.List("modules")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %v", keys)
	}
}

func TestFSStorageSkipsTempFiles(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFSStorage(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Put("modules/https/esm.sh/react", strings.NewReader("export {};")); err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(root, "modules", "https", "esm.sh", tempPrefix+"123"), []byte("export"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := fs.List("modules")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "modules/https/esm.sh/react" {
		t.Fatalf("Expected unfinished puts to be skipped, got %v", keys)
	}
}
