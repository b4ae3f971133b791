package transform

import (
	"fmt"
	"time"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/ije/gox/set"
	logx "github.com/ije/gox/log"
)

type Options struct {
	// JSXRuntime is "react" or "preact"
	JSXRuntime string
	JSXMagic   bool

	// Strict panics on pipeline invariant violations instead of returning them.
	Strict bool
	Logger *logx.Logger
}

// TransformInvariantViolation reports a pass that found the tree or the
// pipeline in a state it can't handle. It indicates a bug of the pipeline.
type TransformInvariantViolation struct {
	Pass    string
	Message string
}

func (e *TransformInvariantViolation) Error() string {
	return fmt.Sprintf("transform invariant violation in pass %q: %s", e.Pass, e.Message)
}

type pass struct {
	name string
	// the passes that must have been visited before this one
	requires []string
	enabled  func(s *state) bool
	run      func(s *state) error
}

// the order of the passes is significant
var pipeline = []pass{
	{name: "scope", run: bindScopes},
	{name: "jsx-source", requires: []string{"scope"}, enabled: isDevLocal, run: annotateJSXSource},
	{name: "jsx-magic", requires: []string{"scope", "jsx-source"}, enabled: jsxMagicEnabled, run: substituteMagicTags},
	{name: "class-names", requires: []string{"jsx-magic"}, run: extractClassNames},
	{name: "imports", requires: []string{"jsx-magic", "class-names"}, run: substituteSpecifiers},
	{name: "refresh", requires: []string{"imports"}, enabled: refreshEnabled, run: registerComponents},
	{name: "hmr", requires: []string{"imports", "refresh"}, enabled: isDevLocal, run: instrumentHMR},
}

type state struct {
	tree    *js_ast.AST
	ctx     *resolver.Context
	options Options
	log     *logx.Logger

	// the magic tags used by the module, e.g. "head"
	magicTags          *set.Set[string]
	cssModuleIds       []string
	useCSSModuleHelper bool
}

// Transform runs the rewrite passes on the tree of the module. The resolver
// context collects the dependencies, inline styles and class names.
func Transform(tree *js_ast.AST, ctx *resolver.Context, options Options) error {
	return runPasses(pipeline, tree, ctx, options)
}

func runPasses(passes []pass, tree *js_ast.AST, ctx *resolver.Context, options Options) error {
	if options.JSXRuntime == "" {
		options.JSXRuntime = "react"
	}
	log := options.Logger
	if log == nil {
		log = &logx.Logger{}
	}
	s := &state{
		tree:      tree,
		ctx:       ctx,
		options:   options,
		log:       log,
		magicTags: set.New[string](),
	}
	visited := set.New[string]()
	for _, p := range passes {
		for _, name := range p.requires {
			if !visited.Has(name) {
				err := &TransformInvariantViolation{Pass: p.name, Message: fmt.Sprintf("pass %q must run first", name)}
				if options.Strict {
					panic(err)
				}
				return err
			}
		}
		visited.Add(p.name)
		if p.enabled != nil && !p.enabled(s) {
			continue
		}
		t := time.Now()
		if err := p.run(s); err != nil {
			if _, ok := err.(*TransformInvariantViolation); ok && options.Strict {
				panic(err)
			}
			return err
		}
		log.Debugf("pipeline(%s): %s in %v", ctx.Specifier(), p.name, time.Since(t))
	}
	return nil
}

func isDevLocal(s *state) bool {
	config := s.ctx.Config()
	return config.IsDev && !config.BundleMode && !s.ctx.SpecifierIsRemote()
}

func jsxMagicEnabled(s *state) bool {
	return s.options.JSXMagic
}

func refreshEnabled(s *state) bool {
	return isDevLocal(s) && s.options.JSXRuntime == "react"
}

// frameworkModule returns the URL of a framework runtime module, the resolver
// replaces the origin with the configured package base URI.
func frameworkModule(name string) string {
	return resolver.DefaultPackageBaseURI + "/framework/" + name
}
