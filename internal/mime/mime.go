package mime

import (
	"path"
	"strings"
)

var langMimeTypes = map[string][]string{
	"js":  {"application/javascript", "text/javascript", "application/ecmascript", "text/ecmascript"},
	"jsx": {"text/jsx"},
	"ts":  {"application/typescript", "text/typescript", "video/vnd.dlna.mpeg-tts", "video/mp2t", "application/x-typescript"},
	"tsx": {"text/tsx"},
}

var langExts = map[string][]string{
	"js":  {"js", "mjs", "cjs"},
	"jsx": {"jsx"},
	"ts":  {"ts", "mts", "cts"},
	"tsx": {"tsx"},
}

var mimeLangs = map[string]string{}
var extLangs = map[string]string{}

func init() {
	for lang, types := range langMimeTypes {
		for _, t := range types {
			mimeLangs[t] = lang
		}
	}
	for lang, exts := range langExts {
		for _, ext := range exts {
			extLangs["."+ext] = lang
		}
	}
	langMimeTypes = nil
	langExts = nil
}

// GetLangByContentType returns the module lang of the given content type,
// e.g. "text/typescript; charset=utf-8" returns "ts".
func GetLangByContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return mimeLangs[strings.ToLower(strings.TrimSpace(mediaType))]
}

// GetLang returns the module lang of the given filename or URL path.
func GetLang(filename string) string {
	if i := strings.IndexAny(filename, "?#"); i >= 0 {
		filename = filename[:i]
	}
	return extLangs[path.Ext(filename)]
}

// GetContentType returns the content type of the compiled module of the given lang.
func GetContentType(lang string) string {
	switch lang {
	case "js", "jsx", "ts", "tsx":
		return "application/javascript; charset=utf-8"
	}
	return ""
}
