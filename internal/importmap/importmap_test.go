package importmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const indexHtml = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Hello, world!</title>
  <script type="importmap">
    {
      "imports": {
        "react": "https://esm.sh/react@18.2.0",
        "react/": "https://esm.sh/react@18.2.0/",
        "react-dom": "https://esm.sh/react-dom@18.2.0",
        "react-dom/": "https://esm.sh/react-dom@18.2.0/"
      },
      "scopes": {
        "https://esm.sh/": {
          "scheduler": "https://esm.sh/scheduler@0.23.0",
          "scheduler/": "https://esm.sh/scheduler@0.23.0/"
        }
      }
    }
  </script>
</head>
<body>
  <h1>Hello, world!</h1>
</body>
</html>
`

func TestParseFromHtmlFile(t *testing.T) {
	tmpDir := t.TempDir()
	htmlFile := filepath.Join(tmpDir, "index.html")
	err := os.WriteFile(htmlFile, []byte(indexHtml), 0644)
	if err != nil {
		t.Fatalf("Failed to write HTML file: %v", err)
	}
	im, err := ParseFile(htmlFile)
	if err != nil {
		t.Fatalf("Failed to parse import map: %v", err)
	}
	if im.Imports.Len() != 4 {
		t.Fatalf("Expected 4 imports, got %d", im.Imports.Len())
	}
	keys := im.Imports.Keys()
	if strings.Join(keys, ",") != "react,react/,react-dom,react-dom/" {
		t.Fatalf("Expected keys in source order, got %v", keys)
	}
	if len(im.Scopes()) != 1 {
		t.Fatalf("Expected 1 scope, got %d", len(im.Scopes()))
	}
	scope, ok := im.GetScopeImports("https://esm.sh/")
	if !ok || scope.Len() != 2 {
		t.Fatalf("Expected 2 imports in scope, got %v", scope)
	}
}

func TestParseFromHtmlWithoutImportMap(t *testing.T) {
	_, err := ParseFromHtml(strings.NewReader("<html><head><script>alert(1)</script></head></html>"))
	if err != ErrNoImportMap {
		t.Fatalf("Expected ErrNoImportMap, got %v", err)
	}
}

func TestParse(t *testing.T) {
	im, err := Parse([]byte(`{
		"$src": "/import_map.json",
		"imports": { "b": "./b.ts", "a": "./a.ts", "x": null },
		"scopes": { "/z/": { "a": "./za.ts" }, "/y/": {} }
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if im.Src != "/import_map.json" {
		t.Fatalf("Expected src '/import_map.json', got '%s'", im.Src)
	}
	if keys := im.Imports.Keys(); len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("Expected keys [b a], got %v", keys)
	}
	scopes := im.Scopes()
	if len(scopes) != 2 || scopes[0].Prefix != "/z/" || scopes[1].Prefix != "/y/" {
		t.Fatalf("Expected scopes in source order, got %v", scopes)
	}

	for _, data := range []string{
		`[]`,
		`{"imports": []}`,
		`{"imports": {"a": 1}}`,
		`{"scopes": {"/": {"a": true}}}`,
		`{"imports": {"a": "./a.ts"}`,
	} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("Expected error for %s, got nil", data)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	im, err := Parse([]byte(`{"imports":{"z":"./z.ts","a":"./a.ts"},"scopes":{"/x/":{"q":"./q.ts"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := im.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"imports":{"z":"./z.ts","a":"./a.ts"},"scopes":{"/x/":{"q":"./q.ts"}}}`
	if string(data) != expected {
		t.Fatalf("Expected %s, got %s", expected, string(data))
	}
}

func TestMarshalJSONKeepsURLs(t *testing.T) {
	data := `{"imports":{"react":"https://esm.sh/react@18.2.0?dev&target=es2022","<x>":"./x.ts"}}`
	im, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	ret, err := im.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(ret) != data {
		t.Fatalf("Expected %s, got %s", data, ret)
	}
}

func TestResolveBlank(t *testing.T) {
	for _, im := range []*ImportMap{nil, Blank(), {}} {
		for _, specifier := range []string{"react", "./a.ts", "@/b.ts", "https://esm.sh/react"} {
			url, ok := im.Resolve("/pages/index.tsx", specifier)
			if ok || url != specifier {
				t.Fatalf("Expected '%s' unchanged, got '%s' (%v)", specifier, url, ok)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	im, err := Parse([]byte(`{
		"imports": {
			"@/": "./",
			"~/": "./",
			"react": "https://esm.sh/react@18.2.0",
			"react-dom/": "https://esm.sh/react-dom@18.2.0/",
			"lib/": "/lib/",
			"lib/utils/": "/vendor/utils/",
			"https://deno.land/x/aleph/": "http://localhost:2020/"
		},
		"scopes": {
			"/pages/": {
				"react": "https://esm.sh/react@17.0.2",
				"ui/": "/pages/ui/"
			},
			"/pages/admin/": {
				"react": "https://esm.sh/react@16.14.0"
			},
			"/no-slash": {
				"react": "https://esm.sh/react@15.0.0"
			}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []struct {
		referrer  string
		specifier string
		expected  string
		ok        bool
	}{
		{"/pages/index.tsx", "@/components/logo.tsx", "./components/logo.tsx", true},
		{"/app.tsx", "~/lib/a.ts", "./lib/a.ts", true},
		{"/app.tsx", "react", "https://esm.sh/react@18.2.0", true},
		{"/app.tsx", "react?dev", "https://esm.sh/react@18.2.0?dev", true},
		{"/app.tsx", "react-dom/client", "https://esm.sh/react-dom@18.2.0/client", true},
		{"/app.tsx", "lib/a.ts", "/lib/a.ts", true},
		{"/app.tsx", "lib/utils/b.ts", "/vendor/utils/b.ts", true},
		{"/app.tsx", "https://deno.land/x/aleph/framework/core/hmr.ts", "http://localhost:2020/framework/core/hmr.ts", true},
		// exact match in a matching scope wins over the global table
		{"/pages/index.tsx", "react", "https://esm.sh/react@17.0.2", true},
		// first matching scope wins, not the longest one
		{"/pages/admin/index.tsx", "react", "https://esm.sh/react@17.0.2", true},
		// prefix match in a matching scope
		{"/pages/index.tsx", "ui/button.tsx", "/pages/ui/button.tsx", true},
		// scope without a trailing slash is never evaluated
		{"/no-slash/index.tsx", "react", "https://esm.sh/react@18.2.0", true},
		// scope misses fall back to the global table
		{"/pages/index.tsx", "react-dom/client", "https://esm.sh/react-dom@18.2.0/client", true},
		{"/app.tsx", "vue", "vue", false},
		{"/app.tsx", "./a.ts", "./a.ts", false},
	} {
		url, ok := im.Resolve(c.referrer, c.specifier)
		if url != c.expected || ok != c.ok {
			t.Fatalf("Resolve(%q, %q): expected '%s' (%v), got '%s' (%v)", c.referrer, c.specifier, c.expected, c.ok, url, ok)
		}
	}
}

func TestImportsSetKeepsOrder(t *testing.T) {
	imports := &Imports{}
	imports.Set("b", "1")
	imports.Set("a", "2")
	imports.Set("b", "3")
	if keys := imports.Keys(); len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("Expected keys [b a], got %v", keys)
	}
	if v, _ := imports.Get("b"); v != "3" {
		t.Fatalf("Expected '3', got '%s'", v)
	}
}
