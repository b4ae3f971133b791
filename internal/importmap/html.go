package importmap

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
)

// ErrNoImportMap is returned when a HTML document has no `<script type="importmap">` tag.
var ErrNoImportMap = errors.New("no import map found")

// ParseFromHtml extracts the first `<script type="importmap">` of the HTML document.
func ParseFromHtml(r io.Reader) (*ImportMap, error) {
	tokenizer := html.NewTokenizer(r)
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			break
		}
		if tt != html.StartTagToken {
			continue
		}
		name, moreAttr := tokenizer.TagName()
		if string(name) != "script" {
			continue
		}
		var typeAttr string
		for moreAttr {
			var key, val []byte
			key, val, moreAttr = tokenizer.TagAttr()
			if bytes.Equal(key, []byte("type")) {
				typeAttr = string(val)
			}
		}
		if typeAttr == "importmap" {
			tokenizer.Next()
			innerText := bytes.TrimSpace(tokenizer.Text())
			if len(innerText) == 0 {
				return Blank(), nil
			}
			return Parse(innerText)
		}
	}
	return nil, ErrNoImportMap
}

// ParseFromHtmlFile extracts the import map of the given HTML file.
func ParseFromHtmlFile(filename string) (*ImportMap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseFromHtml(file)
}

// ParseFile parses the import map of a JSON file, or of a HTML file when the
// file name ends with `.html`.
func ParseFile(filename string) (*ImportMap, error) {
	if filepath.Ext(filename) == ".html" {
		return ParseFromHtmlFile(filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
