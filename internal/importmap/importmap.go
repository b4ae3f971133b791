package importmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ije/esbuild-internal/helpers"
	"github.com/ije/gox/utils"
)

// Imports represents an ordered specifier map. The insertion order of the keys
// is kept since it is observable when more than one prefix matches.
type Imports struct {
	keys    []string
	imports map[string]string
}

// Len returns the length of the imports map.
func (i *Imports) Len() int {
	if i == nil {
		return 0
	}
	return len(i.keys)
}

// Keys returns the keys of the imports map in insertion order.
func (i *Imports) Keys() []string {
	if i == nil {
		return nil
	}
	keys := make([]string, len(i.keys))
	copy(keys, i.keys)
	return keys
}

// Get returns the value of the key in the imports map.
func (i *Imports) Get(specifier string) (string, bool) {
	if i == nil {
		return "", false
	}
	url, ok := i.imports[specifier]
	return url, ok
}

// Set sets the value of the key in the imports map.
// Setting an existing key keeps its original position.
func (i *Imports) Set(specifier string, url string) {
	if i.imports == nil {
		i.imports = make(map[string]string)
	}
	if _, ok := i.imports[specifier]; !ok {
		i.keys = append(i.keys, specifier)
	}
	i.imports[specifier] = url
}

// Range ranges over the imports map in insertion order.
func (i *Imports) Range(fn func(specifier string, url string) bool) {
	if i == nil {
		return
	}
	for _, specifier := range i.keys {
		if !fn(specifier, i.imports[specifier]) {
			break
		}
	}
}

// match looks up the specifier: an exact entry wins, otherwise the longest
// `/`-terminated key that prefixes the specifier is spliced with the rest.
func (i *Imports) match(specifier string) (string, bool) {
	if i.Len() == 0 {
		return "", false
	}
	if url, ok := i.imports[specifier]; ok {
		return url, true
	}
	var matched string
	for _, key := range i.keys {
		if strings.HasSuffix(key, "/") && strings.HasPrefix(specifier, key) && len(key) > len(matched) {
			matched = key
		}
	}
	if matched != "" {
		return i.imports[matched] + specifier[len(matched):], true
	}
	return "", false
}

// Scope is a referrer prefix with its own specifier map.
type Scope struct {
	Prefix  string
	Imports *Imports
}

// ImportMap represents an import map that follows the import maps specification:
// https://developer.mozilla.org/en-US/docs/Web/HTML/Reference/Elements/script/type/importmap
//
// An ImportMap must not be modified once it is handed to a compile, it is
// shared read-only by concurrent compiles.
type ImportMap struct {
	// Src is the location of the import map, relative replacement values are
	// resolved against it. Defaults to "/" (the project root).
	Src     string
	Imports *Imports
	scopes  []Scope
}

// Blank creates a new import map with empty imports and scopes.
func Blank() *ImportMap {
	return &ImportMap{
		Src:     "/",
		Imports: &Imports{},
	}
}

// IsBlank returns true if the import map has neither imports nor scopes.
func (im *ImportMap) IsBlank() bool {
	return im == nil || (im.Imports.Len() == 0 && len(im.scopes) == 0)
}

// Scopes returns the scopes of the import map in insertion order.
func (im *ImportMap) Scopes() []Scope {
	return im.scopes
}

// GetScopeImports returns the imports of the given scope.
func (im *ImportMap) GetScopeImports(prefix string) (*Imports, bool) {
	for _, scope := range im.scopes {
		if scope.Prefix == prefix {
			return scope.Imports, true
		}
	}
	return nil, false
}

// SetScopeImports sets the imports of the given scope, appending the scope
// if it does not exist yet.
func (im *ImportMap) SetScopeImports(prefix string, imports *Imports) {
	for i, scope := range im.scopes {
		if scope.Prefix == prefix {
			im.scopes[i].Imports = imports
			return
		}
	}
	im.scopes = append(im.scopes, Scope{Prefix: prefix, Imports: imports})
}

// Resolve resolves the specifier imported by the referrer.
// It returns the resolved specifier and a boolean indicating if the import map
// had an entry for it. Resolution never fails, unknown specifiers are returned
// unchanged.
//
// Scopes are checked in insertion order (first matching scope wins, not the
// longest one), then the global imports.
func (im *ImportMap) Resolve(referrer string, specifier string) (string, bool) {
	if im.IsBlank() {
		return specifier, false
	}

	var query string
	path, q := utils.SplitByFirstByte(specifier, '?')
	if q != "" {
		query = "?" + q
	}

	for _, scope := range im.scopes {
		if strings.HasSuffix(scope.Prefix, "/") && strings.HasPrefix(referrer, scope.Prefix) {
			if url, ok := scope.Imports.match(specifier); ok {
				return url, true
			}
			if query != "" {
				if url, ok := scope.Imports.match(path); ok {
					return url + query, true
				}
			}
		}
	}

	if url, ok := im.Imports.match(specifier); ok {
		return url, true
	}
	if query != "" {
		if url, ok := im.Imports.match(path); ok {
			return url + query, true
		}
	}
	return specifier, false
}

// Parse parses an import map from JSON, keeping the order of the `imports`
// and `scopes` entries.
func Parse(data []byte) (im *ImportMap, err error) {
	im = Blank()
	err = im.UnmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	return
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (im *ImportMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return errors.New("import map must be a JSON object")
	}
	if im.Src == "" {
		im.Src = "/"
	}
	if im.Imports == nil {
		im.Imports = &Imports{}
	}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "imports":
			imports, err := decodeImports(dec, "imports")
			if err != nil {
				return err
			}
			im.Imports = imports
		case "scopes":
			if err := expectDelim(dec, '{'); err != nil {
				return errors.New("invalid import map: \"scopes\" must be an object")
			}
			for dec.More() {
				prefix, err := nextKey(dec)
				if err != nil {
					return err
				}
				imports, err := decodeImports(dec, "scopes."+prefix)
				if err != nil {
					return err
				}
				im.SetScopeImports(prefix, imports)
			}
			if err := expectDelim(dec, '}'); err != nil {
				return err
			}
		case "$src":
			var src string
			if err := dec.Decode(&src); err != nil {
				return fmt.Errorf("invalid import map: \"$src\" must be a string")
			}
			if src != "" {
				im.Src = src
			}
		default:
			// ignore unknown fields like `integrity`
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
	}
	return expectDelim(dec, '}')
}

// MarshalJSON implements the json.Marshaler interface.
func (im *ImportMap) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{\"imports\":")
	writeImports(buf, im.Imports)
	if len(im.scopes) > 0 {
		buf.WriteString(",\"scopes\":{")
		for i, scope := range im.scopes {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(helpers.QuoteForJSON(scope.Prefix, false))
			buf.WriteByte(':')
			writeImports(buf, scope.Imports)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeImports(buf *bytes.Buffer, imports *Imports) {
	buf.WriteByte('{')
	i := 0
	imports.Range(func(specifier string, url string) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(helpers.QuoteForJSON(specifier, false))
		buf.WriteByte(':')
		buf.Write(helpers.QuoteForJSON(url, false))
		i++
		return true
	})
	buf.WriteByte('}')
}

func decodeImports(dec *json.Decoder, name string) (*Imports, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("invalid import map: %q must be an object", name)
	}
	imports := &Imports{}
	for dec.More() {
		specifier, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case string:
			imports.Set(specifier, v)
		case nil:
			// a null entry blocks nothing here, just skip it
		default:
			return nil, fmt.Errorf("invalid import map: the value of %q in %q must be a string", specifier, name)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return imports, nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("invalid import map: unexpected token %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != delim {
		return fmt.Errorf("invalid import map: expected %q, got %v", delim, tok)
	}
	return nil
}
