package compiler

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/alephjs/aleph-compiler/internal/js_parser"
	"github.com/alephjs/aleph-compiler/internal/js_printer"
	"github.com/alephjs/aleph-compiler/internal/mime"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/alephjs/aleph-compiler/internal/transform"
	"github.com/evanw/esbuild/pkg/api"
)

type DependencyDescriptor = resolver.DependencyDescriptor

// InlineStyleRecord is a `<style>` of the module, the element content is
// replaced by the `%%<id>-placeholder%%` placeholder in the code.
type InlineStyleRecord struct {
	Id     string   `json:"id"`
	Kind   string   `json:"type"`
	Quasis []string `json:"quasis"`
	Exprs  []string `json:"exprs"`
}

type TransformOutput struct {
	Code             string                 `json:"code"`
	Map              string                 `json:"map,omitempty"`
	Deps             []DependencyDescriptor `json:"deps"`
	InlineStyles     []InlineStyleRecord    `json:"inlineStyles,omitempty"`
	StaticClassNames []string               `json:"staticClassNames,omitempty"`
	IsESM            bool                   `json:"isESM"`
	NamedExports     []string               `json:"namedExports"`
}

// Compile compiles a JavaScript/TypeScript module to browser-ready
// JavaScript. It returns either the complete output or one error.
func Compile(specifier string, source string, opts *Options) (*TransformOutput, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if err := fixOptions(&o, ""); err != nil {
		return nil, err
	}

	ctx, err := resolver.New(specifier, o.resolverConfig())
	if err != nil {
		return nil, err
	}

	t := time.Now()
	tree, err := js_parser.Parse(context.Background(), &js_ast.Source{KeyPath: specifier, Contents: source, Lang: o.Lang})
	if err != nil {
		return nil, err
	}
	log.Debugf("parse(%s) in %v", specifier, time.Since(t))

	err = transform.Transform(tree, ctx, transform.Options{
		JSXRuntime: o.JSXRuntime,
		JSXMagic:   o.JSXMagic,
		Strict:     o.Strict,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	printed := js_printer.Print(tree, js_printer.Options{AddSourceMappings: o.SourceMap})
	code, sourceMap, err := emit(specifier, printed, &o)
	if err != nil {
		return nil, err
	}

	isESM, namedExports, err := analyzeExports(code)
	if err != nil {
		log.Warnf("analyze exports of %s: %v", specifier, err)
	}

	out := &TransformOutput{
		Code:             code,
		Map:              sourceMap,
		Deps:             ctx.Deps(),
		StaticClassNames: ctx.StaticClassNames(),
		IsESM:            isESM,
		NamedExports:     namedExports,
	}
	for _, id := range ctx.InlineStyleIds() {
		style, _ := ctx.InlineStyle(id)
		out.InlineStyles = append(out.InlineStyles, InlineStyleRecord{
			Id:     id,
			Kind:   style.Kind,
			Quasis: style.Quasis,
			Exprs:  style.Exprs,
		})
	}
	log.Debugf("compile(%s) in %v", specifier, time.Since(t))
	return out, nil
}

// emit strips the types, lowers the JSX and the decorators of the printed
// code. The source map of the printer is passed inline so the output map
// points to the original source.
func emit(specifier string, printed js_printer.PrintResult, opts *Options) (code string, sourceMap string, err error) {
	contents := string(printed.JS)
	if printed.SourceMap != nil {
		contents += "\n//# sourceMappingURL=data:application/json;base64," + base64.StdEncoding.EncodeToString(printed.SourceMap)
	}

	jsxFactory := "React.createElement"
	jsxFragment := "React.Fragment"
	if opts.JSXRuntime == "preact" {
		jsxFactory = "h"
		jsxFragment = "Fragment"
	}

	transformOpts := api.TransformOptions{
		Sourcefile:  specifier,
		Loader:      getLoader(specifier, opts.Lang),
		Format:      api.FormatESModule,
		Platform:    api.PlatformBrowser,
		Target:      targets[opts.Target],
		JSX:         api.JSXTransform,
		JSXFactory:  jsxFactory,
		JSXFragment: jsxFragment,
		TsconfigRaw: `{"compilerOptions":{"experimentalDecorators":true}}`,
		Charset:     api.CharsetUTF8,
	}
	if opts.SourceMap {
		transformOpts.Sourcemap = api.SourceMapExternal
	}
	if opts.Minify {
		transformOpts.MinifyWhitespace = true
		transformOpts.MinifyIdentifiers = true
		transformOpts.MinifySyntax = true
	}

	ret := api.Transform(contents, transformOpts)
	if len(ret.Errors) > 0 {
		msg := ret.Errors[0]
		emitErr := &EmitError{Specifier: specifier, Message: msg.Text}
		if msg.Location != nil {
			emitErr.Line = msg.Location.Line
			emitErr.Column = msg.Location.Column
		}
		return "", "", emitErr
	}
	for _, msg := range ret.Warnings {
		log.Debugf("esbuild(%s): %s", specifier, msg.Text)
	}
	return string(ret.Code), string(ret.Map), nil
}

func getLoader(specifier string, lang string) api.Loader {
	if lang == "" {
		lang = mime.GetLang(specifier)
	}
	switch lang {
	case "ts":
		return api.LoaderTS
	case "tsx":
		return api.LoaderTSX
	default:
		return api.LoaderJSX
	}
}
