package resolver

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/alephjs/aleph-compiler/internal/importmap"
	"github.com/ije/gox/set"
)

// DefaultPackageBaseURI is the origin the framework runtime modules are imported from.
const DefaultPackageBaseURI = "https://deno.land/x/aleph"

// Config is the resolver configuration shared read-only by all compiles.
type Config struct {
	ImportMap *importmap.ImportMap
	// PackageBaseURI replaces the DefaultPackageBaseURI origin when it's set.
	PackageBaseURI string
	// ReactVersion pins the version of react/react-dom CDN URLs.
	ReactVersion string
	// CdnBuildVersion pins the build version (`/v<N>/`) of react/react-dom CDN URLs.
	CdnBuildVersion int
	// GraphVersions maps canonical specifiers to cache-busting version tokens.
	GraphVersions  map[string]string
	DefaultVersion string
	JSXRuntime     string
	IsDev          bool
	BundleMode     bool
	ProxyRemote    bool
}

// DependencyDescriptor is a dependency recorded while resolving the imports of a module.
type DependencyDescriptor struct {
	// Index is the position of the import in the module, the same source
	// always gets the same indexes.
	Index     int    `json:"index"`
	Specifier string `json:"specifier"`
	ImportURL string `json:"importUrl"`
	IsDynamic bool   `json:"isDynamic,omitempty"`
}

// InlineStyle is a `<style>` template decomposed into literal segments and embedded expressions.
type InlineStyle struct {
	Kind   string   `json:"type"`
	Quasis []string `json:"quasis"`
	Exprs  []string `json:"exprs"`
}

// ResolveError is returned when the module identity can not be used as a referrer.
type ResolveError struct {
	Specifier string
	Err       error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not resolve imports of %q: %v", e.Specifier, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Context holds the resolution state of one module. It is owned by a single
// compile and must not be shared across goroutines.
type Context struct {
	config            *Config
	specifier         string
	specifierIsRemote bool
	referrerURL       *url.URL
	importCounter     int
	styleCounter      int
	deps              []DependencyDescriptor
	inlineStyles      map[string]*InlineStyle
	inlineStyleIds    []string
	staticClassNames  *set.Set[string]
	extraImports      []string
}

// New creates a resolver context for the module of the given specifier.
func New(specifier string, config *Config) (*Context, error) {
	if config == nil {
		config = &Config{}
	}
	ctx := &Context{
		config:            config,
		specifier:         specifier,
		specifierIsRemote: IsRemoteURL(specifier),
		inlineStyles:      map[string]*InlineStyle{},
		staticClassNames:  set.New[string](),
	}
	if ctx.specifierIsRemote {
		u, err := url.Parse(specifier)
		if err != nil {
			return nil, &ResolveError{Specifier: specifier, Err: err}
		}
		if u.Host == "" {
			return nil, &ResolveError{Specifier: specifier, Err: fmt.Errorf("missing host")}
		}
		ctx.referrerURL = u
	}
	return ctx, nil
}

// Config returns the resolver configuration.
func (ctx *Context) Config() *Config {
	return ctx.config
}

// Specifier returns the specifier of the module.
func (ctx *Context) Specifier() string {
	return ctx.specifier
}

// SpecifierIsRemote returns true if the module is loaded from a http(s) URL.
func (ctx *Context) SpecifierIsRemote() bool {
	return ctx.specifierIsRemote
}

// Deps returns the recorded dependencies in resolution order.
func (ctx *Context) Deps() []DependencyDescriptor {
	deps := make([]DependencyDescriptor, len(ctx.deps))
	copy(deps, ctx.deps)
	return deps
}

// NextStyleIndex returns the per-module index of the next inline style.
func (ctx *Context) NextStyleIndex() int {
	i := ctx.styleCounter
	ctx.styleCounter++
	return i
}

// AddInlineStyle records an inline style by id.
func (ctx *Context) AddInlineStyle(id string, style *InlineStyle) {
	if _, ok := ctx.inlineStyles[id]; !ok {
		ctx.inlineStyleIds = append(ctx.inlineStyleIds, id)
	}
	ctx.inlineStyles[id] = style
}

// InlineStyle returns the inline style of the given id.
func (ctx *Context) InlineStyle(id string) (*InlineStyle, bool) {
	style, ok := ctx.inlineStyles[id]
	return style, ok
}

// InlineStyleIds returns the ids of the recorded inline styles in insertion order.
func (ctx *Context) InlineStyleIds() []string {
	ids := make([]string, len(ctx.inlineStyleIds))
	copy(ids, ctx.inlineStyleIds)
	return ids
}

// AddStaticClassName records a class name used by the module.
func (ctx *Context) AddStaticClassName(name string) {
	if name != "" {
		ctx.staticClassNames.Add(name)
	}
}

// HasStaticClassName returns true if the class name has been recorded.
func (ctx *Context) HasStaticClassName(name string) bool {
	return ctx.staticClassNames.Has(name)
}

// StaticClassNames returns the recorded class names, sorted.
func (ctx *Context) StaticClassNames() []string {
	names := ctx.staticClassNames.Values()
	sort.Strings(names)
	return names
}

// AddExtraImport records a side-effect import (a code URL) the module needs
// in addition to its own imports.
func (ctx *Context) AddExtraImport(importURL string) {
	for _, s := range ctx.extraImports {
		if s == importURL {
			return
		}
	}
	ctx.extraImports = append(ctx.extraImports, importURL)
}

// ExtraImports returns the extra side-effect imports in insertion order.
func (ctx *Context) ExtraImports() []string {
	return ctx.extraImports
}
