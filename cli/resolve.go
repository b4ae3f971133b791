package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/alephjs/aleph-compiler/compiler"
	"github.com/goccy/go-json"
	"github.com/ije/gox/term"
)

const resolveHelpMessage = `Resolve the import specifiers of a module.

Usage: aleph-compiler resolve <referrer> [...specifiers] [options]

Arguments:
  referrer       Specifier of the importing module, e.g. "/pages/index.tsx"
  specifiers     The specifiers to resolve

Options:
  --options      Path of a JSONC options file
  --json         Print the results as JSON
  --log-level    Log level, one of "debug", "info", "warn" and "error", logs go to ~/.aleph-compiler/log/cli.log
  --help, -h     Show help message
`

// Resolve prints the code URL and the canonical specifier of each specifier.
func Resolve() {
	optionsFile := flag.String("options", "", "options file")
	printJSON := flag.Bool("json", false, "json output")
	logLevel := flag.String("log-level", "", "log level")
	args, help := parseCommandFlags()

	if help || len(args) < 2 {
		fmt.Print(resolveHelpMessage)
		return
	}
	setupLogger(*logLevel, true)

	var opts *compiler.Options
	if *optionsFile != "" {
		var err error
		opts, err = compiler.LoadOptions(*optionsFile)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	results, deps, err := compiler.Resolve(args[0], args[1:], opts)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if *printJSON {
		data, err := json.MarshalIndent(map[string]any{"results": results, "deps": deps}, "", "  ")
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		os.Stdout.Write(append(data, '\n'))
		return
	}
	for _, r := range results {
		fmt.Println(r.Specifier, term.Dim("→"), term.Green(r.ImportURL), term.Dim("("+r.Canonical+")"))
	}
}
