package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<!DOCTYPE html>
<html>
<head>
  <script type="importmap">
    {"imports": {"react": "https://esm.sh/react@18.2.0"}}
  </script>
</head>
</html>
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "aleph.jsonc"), []byte(`{
  // the import map of the app
  "importMap": "./index.html",
  "jsxRuntime": "react",
  "graphVersions": {
    "/app.tsx": "2",
  },
}
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("ALEPH_REACT_VERSION", "18.3.1")
	t.Setenv("ALEPH_PACKAGE_BASE_URI", "")
	opts, err := LoadOptions(filepath.Join(dir, "aleph.jsonc"))
	if err != nil {
		t.Fatal(err)
	}
	if url, ok := opts.ImportMap.Resolve("/app.tsx", "react"); !ok || url != "https://esm.sh/react@18.2.0" {
		t.Fatalf("Expected react to be mapped, got '%s'", url)
	}
	if opts.ReactVersion != "18.3.1" {
		t.Fatalf("Expected react version '18.3.1' from the env, got '%s'", opts.ReactVersion)
	}
	if opts.GraphVersions["/app.tsx"] != "2" {
		t.Fatalf("Expected graph version '2', got '%s'", opts.GraphVersions["/app.tsx"])
	}
	if opts.Target != "es2022" {
		t.Fatalf("Expected default target 'es2022', got '%s'", opts.Target)
	}
}

func TestParseOptionsSyntaxError(t *testing.T) {
	_, err := ParseOptions([]byte("{\n  // the target\n  \"target\": \"es2022\" \"jsxRuntime\": \"react\"\n}"))
	var configErr *ConfigError
	if !errors.As(err, &configErr) || configErr.Field != "options" {
		t.Fatalf("Expected a ConfigError of 'options', got %v", err)
	}
	if !strings.Contains(err.Error(), "(line 3, column ") {
		t.Fatalf("Expected the error to report line 3, got %v", err)
	}
}

func TestFixOptions(t *testing.T) {
	t.Setenv("ALEPH_PACKAGE_BASE_URI", "")
	t.Setenv("ALEPH_REACT_VERSION", "")
	opts := &Options{PackageBaseURI: "https://cdn.example.com/aleph/", ReactVersion: "v18"}
	if err := fixOptions(opts, ""); err != nil {
		t.Fatal(err)
	}
	if opts.PackageBaseURI != "https://cdn.example.com/aleph" {
		t.Fatalf("Expected the trailing slash to be trimmed, got '%s'", opts.PackageBaseURI)
	}
	if opts.ReactVersion != "18.0.0" {
		t.Fatalf("Expected react version '18.0.0', got '%s'", opts.ReactVersion)
	}
	if opts.JSXRuntime != "react" || !opts.ImportMap.IsBlank() {
		t.Fatalf("Unexpected defaults: %+v", opts)
	}
	// fixing twice doesn't change anything
	before := *opts
	if err := fixOptions(opts, ""); err != nil {
		t.Fatal(err)
	}
	if before.PackageBaseURI != opts.PackageBaseURI || before.ReactVersion != opts.ReactVersion || before.ImportMap != opts.ImportMap {
		t.Fatalf("Expected fixOptions to be idempotent, got %+v", opts)
	}
}

func TestAnalyzeExports(t *testing.T) {
	isESM, exports, err := analyzeExports("export const a = 1;\nexport default function() {}\nexport { a as b };\n")
	if err != nil {
		t.Fatal(err)
	}
	if !isESM {
		t.Fatal("Expected an ES module")
	}
	if len(exports) != 3 || exports[0] != "a" || exports[1] != "b" || exports[2] != "default" {
		t.Fatalf("Expected [a b default], got %v", exports)
	}
}
