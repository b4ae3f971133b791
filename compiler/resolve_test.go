package compiler

import "testing"

func TestResolve(t *testing.T) {
	opts := mustParseOptions(t, `{"importMap":{"imports":{"@/":"./"}},"defaultVersion":"7"}`)
	results, deps, err := Resolve("/pages/index.tsx", []string{"@/components/logo.tsx", "./about.tsx", "vue"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	expected := []ResolveResult{
		{"@/components/logo.tsx", "/components/logo.tsx?v=7", "/components/logo.tsx"},
		{"./about.tsx", "/pages/about.tsx?v=7", "/pages/about.tsx"},
		{"vue", "vue", "vue"},
	}
	for i, r := range results {
		if r != expected[i] {
			t.Fatalf("Expected %v, got %v", expected[i], r)
		}
	}
	if len(deps) != 3 || deps[0].ImportURL != "/components/logo.tsx?v=7" {
		t.Fatalf("Unexpected deps %v", deps)
	}

	if _, _, err := Resolve("https://", []string{"./a.ts"}, nil); err == nil {
		t.Fatal("Expected an error for the bad referrer")
	}
}
