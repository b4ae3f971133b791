package mime

import "testing"

func TestGetLang(t *testing.T) {
	for _, c := range [][2]string{
		{"/app.tsx", "tsx"},
		{"https://deno.land/x/mod/mod.ts?v=1", "ts"},
		{"/lib/util.mjs", "js"},
		{"/index.jsx#main", "jsx"},
		{"/style.css", ""},
		{"https://esm.sh/react", ""},
	} {
		if lang := GetLang(c[0]); lang != c[1] {
			t.Fatalf("GetLang(%q): expected '%s', got '%s'", c[0], c[1], lang)
		}
	}
}

func TestGetLangByContentType(t *testing.T) {
	for _, c := range [][2]string{
		{"application/typescript; charset=utf-8", "ts"},
		{"text/JavaScript", "js"},
		{"text/tsx", "tsx"},
		{"video/mp2t", "ts"},
		{"text/html; charset=utf-8", ""},
	} {
		if lang := GetLangByContentType(c[0]); lang != c[1] {
			t.Fatalf("GetLangByContentType(%q): expected '%s', got '%s'", c[0], c[1], lang)
		}
	}
}
