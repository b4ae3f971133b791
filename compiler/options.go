package compiler

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/alephjs/aleph-compiler/internal/importmap"
	"github.com/alephjs/aleph-compiler/internal/jsonc"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/goccy/go-json"
)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

// Options represents the options of a compile, it's shared read-only by
// concurrent compiles once fixed.
type Options struct {
	// ImportMapRaw is an import map object, or the path of a JSON/HTML file
	// containing the import map.
	ImportMapRaw    json.RawMessage      `json:"importMap"`
	ImportMap       *importmap.ImportMap `json:"-"`
	IsDev           bool                 `json:"isDev"`
	BundleMode      bool                 `json:"bundleMode"`
	PackageBaseURI  string               `json:"packageBaseUri"`
	ReactVersion    string               `json:"reactVersion"`
	CdnBuildVersion int                  `json:"cdnBuildVersion"`
	GraphVersions   map[string]string    `json:"graphVersions"`
	DefaultVersion  string               `json:"defaultVersion"`
	JSXRuntime      string               `json:"jsxRuntime"`
	JSXMagic        bool                 `json:"jsxMagic"`
	ProxyRemote     bool                 `json:"proxyRemote"`
	SourceMap       bool                 `json:"sourceMap"`
	Minify          bool                 `json:"minify"`
	Target          string               `json:"target"`
	// Lang overrides the language implied by the extension of the specifier,
	// one of "js", "jsx", "ts" and "tsx".
	Lang string `json:"lang"`
	// Strict panics on transform invariant violations
	Strict bool `json:"strict"`
}

// LoadOptions loads the options from the given JSONC file. A relative import
// map path is resolved against the directory of the file.
func LoadOptions(filename string) (*Options, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("fail to read options file: %w", err)
	}
	return parseOptions(data, filepath.Dir(filename))
}

// ParseOptions parses the options from JSON(C) data.
func ParseOptions(data []byte) (*Options, error) {
	return parseOptions(data, "")
}

func parseOptions(data []byte, baseDir string) (*Options, error) {
	var opts Options
	data = jsonc.Strip(data)
	err := json.Unmarshal(data, &opts)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, column := jsonc.Position(data, int(syntaxErr.Offset))
			err = fmt.Errorf("%w (line %d, column %d)", err, line, column)
		}
		return nil, &ConfigError{Field: "options", Err: err}
	}
	err = fixOptions(&opts, baseDir)
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

// fixOptions validates the options and applies the defaults and the
// environment overrides. It's idempotent.
func fixOptions(opts *Options, baseDir string) error {
	if opts.ImportMap == nil {
		im, err := loadImportMap(opts.ImportMapRaw, baseDir)
		if err != nil {
			return &ConfigError{Field: "importMap", Err: err}
		}
		opts.ImportMap = im
	}

	if opts.PackageBaseURI == "" {
		opts.PackageBaseURI = os.Getenv("ALEPH_PACKAGE_BASE_URI")
	}
	if opts.PackageBaseURI != "" {
		u, err := url.Parse(opts.PackageBaseURI)
		if err != nil {
			return &ConfigError{Field: "packageBaseUri", Err: err}
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ConfigError{Field: "packageBaseUri", Err: errors.New("require a http(s) URL")}
		}
		opts.PackageBaseURI = strings.TrimSuffix(opts.PackageBaseURI, "/")
	}

	if opts.ReactVersion == "" {
		opts.ReactVersion = os.Getenv("ALEPH_REACT_VERSION")
	}
	if opts.ReactVersion != "" {
		v, err := semver.NewVersion(opts.ReactVersion)
		if err != nil {
			return &ConfigError{Field: "reactVersion", Err: err}
		}
		opts.ReactVersion = v.String()
	}
	if opts.CdnBuildVersion < 0 {
		return &ConfigError{Field: "cdnBuildVersion", Err: errors.New("must not be negative")}
	}

	switch opts.JSXRuntime {
	case "":
		opts.JSXRuntime = "react"
	case "react", "preact":
	default:
		return &ConfigError{Field: "jsxRuntime", Err: fmt.Errorf("unknown jsx runtime %q", opts.JSXRuntime)}
	}

	switch opts.Lang {
	case "", "js", "jsx", "ts", "tsx":
	default:
		return &ConfigError{Field: "lang", Err: fmt.Errorf("unknown lang %q", opts.Lang)}
	}

	if opts.Target == "" {
		opts.Target = "es2022"
	} else if _, ok := targets[opts.Target]; !ok {
		return &ConfigError{Field: "target", Err: fmt.Errorf("unknown target %q", opts.Target)}
	}

	return nil
}

func (opts *Options) resolverConfig() *resolver.Config {
	return &resolver.Config{
		ImportMap:       opts.ImportMap,
		PackageBaseURI:  opts.PackageBaseURI,
		ReactVersion:    opts.ReactVersion,
		CdnBuildVersion: opts.CdnBuildVersion,
		GraphVersions:   opts.GraphVersions,
		DefaultVersion:  opts.DefaultVersion,
		JSXRuntime:      opts.JSXRuntime,
		IsDev:           opts.IsDev,
		BundleMode:      opts.BundleMode,
		ProxyRemote:     opts.ProxyRemote,
	}
}

func loadImportMap(raw json.RawMessage, baseDir string) (*importmap.ImportMap, error) {
	data := strings.TrimSpace(string(raw))
	if data == "" || data == "null" {
		return importmap.Blank(), nil
	}
	if strings.HasPrefix(data, "\"") {
		var filename string
		if err := json.Unmarshal(raw, &filename); err != nil {
			return nil, err
		}
		if filename == "" {
			return importmap.Blank(), nil
		}
		if !filepath.IsAbs(filename) && baseDir != "" {
			filename = filepath.Join(baseDir, filename)
		}
		return importmap.ParseFile(filename)
	}
	return importmap.Parse(raw)
}
