package cli

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/alephjs/aleph-compiler/internal/storage"
)

func TestCacheKey(t *testing.T) {
	for _, c := range [][2]string{
		{"https://deno.land/x/aleph/mod.ts", "modules/https/deno.land/x/aleph/mod.ts"},
		{"https://esm.sh/", "modules/https/esm.sh/index"},
		{"http://localhost:8080/a/../b.tsx", "modules/http/localhost:8080/b.tsx"},
	} {
		u, _ := url.Parse(c[0])
		if key := cacheKey(u); key != c[1] {
			t.Fatalf("cacheKey(%q): expected '%s', got '%s'", c[0], c[1], key)
		}
	}
	a, _ := url.Parse("https://esm.sh/react?dev")
	b, _ := url.Parse("https://esm.sh/react?target=es2022")
	if cacheKey(a) == cacheKey(b) {
		t.Fatal("Expected different keys for different queries")
	}
}

func TestModuleCache(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/app":
			w.Header().Set("Content-Type", "text/tsx")
			w.Write([]byte("export default () => <p>hi</p>;\n"))
		case "/util.ts":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("export const n: number = 1;\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	fs, err := storage.NewFSStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cache := &moduleCache{storage: fs}

	u, _ := url.Parse(ts.URL + "/app")
	for i := 0; i < 2; i++ {
		mod, err := cache.load(u)
		if err != nil {
			t.Fatal(err)
		}
		if mod.Lang != "tsx" || mod.URL != ts.URL+"/app" {
			t.Fatalf("Unexpected module %s (%s)", mod.URL, mod.Lang)
		}
		if string(mod.Source) != "export default () => <p>hi</p>;\n" {
			t.Fatalf("Unexpected source '%s'", mod.Source)
		}
	}
	if n := requests.Load(); n != 1 {
		t.Fatalf("Expected 1 request, got %d", n)
	}

	u, _ = url.Parse(ts.URL + "/util.ts")
	mod, err := cache.load(u)
	if err != nil {
		t.Fatal(err)
	}
	if mod.Lang != "ts" {
		t.Fatalf("Expected lang 'ts' from the extension, got '%s'", mod.Lang)
	}

	u, _ = url.Parse(ts.URL + "/404.ts")
	if _, err := cache.load(u); err == nil {
		t.Fatal("Expected an error for 404")
	}
}

func TestModuleCacheListAndClean(t *testing.T) {
	fs, err := storage.NewFSStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cache := &moduleCache{storage: fs}
	for _, rawURL := range []string{"https://esm.sh/react", "https://esm.sh/react-dom?dev", "https://deno.land/x/aleph/mod.ts"} {
		u, _ := url.Parse(rawURL)
		if err := cache.put(u, &remoteModule{URL: rawURL, Lang: "js", Source: []byte("export {};")}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := cache.list("modules/https/esm.sh/")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0] != "https://esm.sh/react-dom?dev (js, 10 bytes)" || list[1] != "https://esm.sh/react (js, 10 bytes)" {
		t.Fatalf("Unexpected list %v", list)
	}

	n, err := cache.clean("modules/https/esm.sh/")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 modules deleted, got %d", n)
	}
	list, err = cache.list("modules/")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0] != "https://deno.land/x/aleph/mod.ts (js, 10 bytes)" {
		t.Fatalf("Unexpected list %v", list)
	}
}
