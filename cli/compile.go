package cli

import (
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alephjs/aleph-compiler/compiler"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/goccy/go-json"
	"github.com/ije/gox/term"
)

const compileHelpMessage = `Compile a JSX/TypeScript module to browser-ready JavaScript.

Usage: aleph-compiler compile <file|url> [options]

Arguments:
  file|url       The module to compile, remote modules are cached in ~/.aleph-compiler/cache

Options:
  --options      Path of a JSONC options file
  --importmap    Path of an import map JSON file, or an HTML file with an importmap script
  --specifier    Specifier of the module, default is the file path relative to the current directory
  --dev          Compile in development mode (HMR, react refresh)
  --jsx-magic    Rewrite the magic tags (a, head, link, style, script)
  --sourcemap    Generate the source map, written to <out>.map with "--out" or inlined otherwise
  --minify       Minify the output
  --json         Print the output as JSON
  --out          Write the code to the file instead of stdout
  --log-level    Log level, one of "debug", "info", "warn" and "error", logs go to ~/.aleph-compiler/log/cli.log
  --help, -h     Show help message
`

// Compile compiles a local file or a remote module.
func Compile() {
	optionsFile := flag.String("options", "", "options file")
	importMapFile := flag.String("importmap", "", "import map file")
	specifier := flag.String("specifier", "", "module specifier")
	dev := flag.Bool("dev", false, "development mode")
	jsxMagic := flag.Bool("jsx-magic", false, "jsx magic tags")
	sourceMap := flag.Bool("sourcemap", false, "source map")
	minify := flag.Bool("minify", false, "minify")
	printJSON := flag.Bool("json", false, "json output")
	outFile := flag.String("out", "", "output file")
	logLevel := flag.String("log-level", "", "log level")
	args, help := parseCommandFlags()

	if help || len(args) == 0 {
		fmt.Print(compileHelpMessage)
		return
	}
	// the code goes to stdout without `--out`
	setupLogger(*logLevel, *outFile == "")

	opts := &compiler.Options{}
	if *optionsFile != "" {
		var err error
		opts, err = compiler.LoadOptions(*optionsFile)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	if *importMapFile != "" {
		filename, err := filepath.Abs(*importMapFile)
		if err == nil {
			opts.ImportMap = nil
			opts.ImportMapRaw, err = json.Marshal(filename)
		}
		if err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	opts.IsDev = opts.IsDev || *dev
	opts.JSXMagic = opts.JSXMagic || *jsxMagic
	opts.SourceMap = opts.SourceMap || *sourceMap
	opts.Minify = opts.Minify || *minify

	source, err := loadSource(args[0], specifier, opts)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	out, err := compiler.Compile(*specifier, source, opts)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if *printJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		err = writeOutput(*outFile, append(data, '\n'))
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		return
	}

	err = writeOutput(*outFile, []byte(withSourceMap(out.Code, out.Map, *outFile)))
	if err == nil && *outFile != "" && out.Map != "" {
		err = os.WriteFile(*outFile+".map", []byte(out.Map), 0644)
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if *outFile != "" {
		fmt.Println(term.Green("✔"), *specifier, term.Dim("→ "+*outFile))
		for _, dep := range out.Deps {
			fmt.Println(term.Dim("  " + dep.ImportURL))
		}
	}
}

// withSourceMap links the code to its source map, the map is written next to
// the output file, or inlined as a data URL when the code goes to stdout.
func withSourceMap(code string, sourceMap string, outFile string) string {
	if sourceMap == "" {
		return code
	}
	if code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if outFile != "" {
		return code + "//# sourceMappingURL=" + filepath.Base(outFile) + ".map\n"
	}
	return code + "//# sourceMappingURL=data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(sourceMap)) + "\n"
}

// loadSource reads the source of the module, the specifier defaults to the
// root-relative path of a local file, or the URL of a remote module.
func loadSource(arg string, specifier *string, opts *compiler.Options) (string, error) {
	if resolver.IsRemoteURL(arg) {
		mod, err := loadRemoteModule(arg)
		if err != nil {
			return "", err
		}
		if *specifier == "" {
			*specifier = mod.URL
		}
		if opts.Lang == "" {
			opts.Lang = mod.Lang
		}
		return string(mod.Source), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	if *specifier == "" {
		*specifier, err = localSpecifier(arg)
		if err != nil {
			return "", err
		}
	}
	return string(data), nil
}

func localSpecifier(filename string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(rel), nil
}

func writeOutput(filename string, data []byte) error {
	if filename == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
