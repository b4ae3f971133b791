package compiler

import (
	"errors"
	"sort"

	"github.com/ije/esbuild-internal/config"
	"github.com/ije/esbuild-internal/js_ast"
	"github.com/ije/esbuild-internal/js_parser"
	"github.com/ije/esbuild-internal/logger"
)

// analyzeExports parses the compiled code and returns the sorted named
// exports, `default` included.
func analyzeExports(code string) (isESM bool, namedExports []string, err error) {
	log := logger.NewDeferLog(logger.DeferLogNoVerboseOrDebug, nil)
	ast, pass := js_parser.Parse(log, logger.Source{
		Index:          0,
		KeyPath:        logger.Path{Text: "<stdin>"},
		PrettyPath:     "<stdin>",
		Contents:       code,
		IdentifierName: "stdin",
	}, js_parser.OptionsFromConfig(&config.Options{}))
	if !pass {
		err = errors.New("invalid syntax, require javascript")
		return
	}
	isESM = ast.ExportsKind == js_ast.ExportsESM
	namedExports = make([]string, 0, len(ast.NamedExports))
	for name := range ast.NamedExports {
		namedExports = append(namedExports, name)
	}
	sort.Strings(namedExports)
	return
}
