package compiler

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

const indexPage = `import React, { useState } from "react";
import type { Props } from "./types.ts";
import Logo from "@/components/logo.tsx";

export const title = "Home";

export default function Index(props: Props) {
  const [count, setCount] = useState(0);
  return (
    <div className="page">
      <head><title>{title}</title></head>
      <Logo />
      <a href="/about" rel="nav">About</a>
      <button onClick={() => setCount(count + 1)}>{count}</button>
    </div>
  );
}
`

func mustParseOptions(t *testing.T, data string) *Options {
	opts, err := ParseOptions([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return opts
}

func TestCompile(t *testing.T) {
	opts := mustParseOptions(t, `{
		// JSONC is allowed
		"importMap": {"imports": {"@/": "./", "react": "https://esm.sh/react@18.2.0"}},
		"jsxMagic": true,
		"defaultVersion": "1",
	}`)
	out, err := Compile("/pages/index.tsx", indexPage, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		`from "https://esm.sh/react@18.2.0"`,
		`from "/components/logo.tsx?v=1"`,
		`from "https://deno.land/x/aleph/framework/react/components/Anchor.ts"`,
		`from "https://deno.land/x/aleph/framework/react/components/Head.ts"`,
		`React.createElement(`,
	} {
		if !strings.Contains(out.Code, s) {
			t.Fatalf("Expected code to contain %q, got:\n%s", s, out.Code)
		}
	}
	if strings.Contains(out.Code, "types.ts") || strings.Contains(out.Code, "Props") {
		t.Fatalf("Expected types to be stripped, got:\n%s", out.Code)
	}
	if len(out.Deps) != 4 {
		t.Fatalf("Expected 4 deps, got %+v", out.Deps)
	}
	if out.Deps[0].Specifier != "https://deno.land/x/aleph/framework/react/components/Anchor.ts" {
		t.Fatalf("Expected the Anchor component first, got %+v", out.Deps[0])
	}
	if !out.IsESM || strings.Join(out.NamedExports, ",") != "default,title" {
		t.Fatalf("Expected named exports [default title], got %v", out.NamedExports)
	}
	if strings.Join(out.StaticClassNames, ",") != "page" {
		t.Fatalf("Expected static class names [page], got %v", out.StaticClassNames)
	}
	if out.Map != "" {
		t.Fatal("Expected no source map")
	}
}

func TestCompileDev(t *testing.T) {
	out, err := Compile("/pages/index.tsx", indexPage, &Options{IsDev: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		`$RefreshReg$(Index, "Index")`,
		`import.meta.hot = __ALEPH__createHotContext("/pages/index.tsx")`,
		`__source:`,
	} {
		if !strings.Contains(out.Code, s) {
			t.Fatalf("Expected code to contain %q, got:\n%s", s, out.Code)
		}
	}
}

func TestCompileInlineStyles(t *testing.T) {
	out, err := Compile("/app.tsx", "export default function App() {\n  return (\n    <>\n      <style>{`h1 { color: ${color}; }`}</style>\n      <style>{`p { margin: 0; }`}</style>\n    </>\n  );\n}\n", &Options{JSXMagic: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.InlineStyles) != 2 || out.InlineStyles[0].Id == out.InlineStyles[1].Id {
		t.Fatalf("Expected 2 inline styles with distinct ids, got %+v", out.InlineStyles)
	}
	first := out.InlineStyles[0]
	if strings.Join(first.Quasis, "|") != "h1 { color: |; }" || strings.Join(first.Exprs, "|") != "color" {
		t.Fatalf("Unexpected inline style: %+v", first)
	}
	if !strings.Contains(out.Code, "%%"+first.Id+"-placeholder%%") {
		t.Fatalf("Expected the style placeholder in code, got:\n%s", out.Code)
	}
}

func TestCompileSourceMap(t *testing.T) {
	out, err := Compile("/app.tsx", indexPage, &Options{SourceMap: true, JSXMagic: true})
	if err != nil {
		t.Fatal(err)
	}
	var sm struct {
		Version int      `json:"version"`
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(out.Map), &sm); err != nil {
		t.Fatalf("Invalid source map: %v", err)
	}
	if sm.Version != 3 || len(sm.Sources) != 1 || !strings.HasSuffix(sm.Sources[0], "app.tsx") {
		t.Fatalf("Unexpected source map: %+v", sm)
	}
}

func TestCompileMinify(t *testing.T) {
	out, err := Compile("/app.tsx", indexPage, &Options{})
	if err != nil {
		t.Fatal(err)
	}
	minified, err := Compile("/app.tsx", indexPage, &Options{Minify: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(minified.Code) >= len(out.Code) {
		t.Fatalf("Expected minified code to be shorter, got %d >= %d", len(minified.Code), len(out.Code))
	}
}

func TestCompilePreact(t *testing.T) {
	out, err := Compile("/app.jsx", "import { h } from \"preact\";\nexport default () => <p>hi</p>;\n", &Options{JSXRuntime: "preact"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Code, `h("p", null, "hi")`) {
		t.Fatalf("Expected the preact factory, got:\n%s", out.Code)
	}
}

func TestCompileDecorators(t *testing.T) {
	out, err := Compile("/service.ts", "function injectable(target: any) {}\n\n@injectable\nclass Service {}\n\nexport { Service };\n", &Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Code, "__decorateClass") {
		t.Fatalf("Expected the decorators to be lowered, got:\n%s", out.Code)
	}
}

func TestCompileDynamicImport(t *testing.T) {
	out, err := Compile("/app.ts", "import a from \"./a.ts\";\nexport const b = () => import(\"./b.ts\");\nconsole.log(a);\n", &Options{BundleMode: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Deps) != 2 || out.Deps[0].IsDynamic || !out.Deps[1].IsDynamic {
		t.Fatalf("Unexpected deps: %+v", out.Deps)
	}
	if out.Deps[0].Index != 0 || out.Deps[1].Index != 1 {
		t.Fatalf("Expected the deps to be indexed in import order, got %+v", out.Deps)
	}
	if !strings.Contains(out.Code, `import("/b.ts")`) {
		t.Fatalf("Expected the dynamic import to be resolved, got:\n%s", out.Code)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("/app.ts", "const = 1;\n", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}

	_, err = Compile("https://", "export {};\n", nil)
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("Expected ResolveError, got %v", err)
	}

	for _, opts := range []*Options{
		{ImportMapRaw: json.RawMessage(`{"imports":{"react":1}}`)},
		{JSXRuntime: "vue"},
		{ReactVersion: "latest"},
		{PackageBaseURI: "ftp://example.com"},
		{Target: "es5"},
	} {
		_, err = Compile("/app.ts", "export {};\n", opts)
		var configErr *ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("Expected ConfigError for %+v, got %v", opts, err)
		}
	}
}

func TestCompileKeepsStdoutClean(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	_, err = Compile("/pages/index.tsx", indexPage, &Options{IsDev: true, JSXMagic: true})
	os.Stdout = stdout
	w.Close()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(r)
	if len(data) > 0 {
		t.Fatalf("Expected nothing written to stdout, got %q", data)
	}
}
