package cli

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/alephjs/aleph-compiler/compiler"
	"github.com/alephjs/aleph-compiler/internal/app_dir"
	logx "github.com/ije/gox/log"
	"github.com/ije/gox/term"
)

// parseCommandFlags parses the flags of the command, flags and arguments can
// be mixed, e.g. `compile app.tsx --dev`.
func parseCommandFlags() (args []string, help bool) {
	return parseFlags(flag.CommandLine, os.Args[2:])
}

func parseFlags(fs *flag.FlagSet, argv []string) (args []string, help bool) {
	h := fs.Bool("h", false, "")
	fs.BoolVar(h, "help", false, "")
	for {
		if err := fs.Parse(argv); err != nil {
			return nil, true
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		args = append(args, rest[0])
		argv = rest[1:]
	}
	return args, *h
}

// setupLogger writes the compiler logs to `<app dir>/log/cli.log`, they are
// printed to the terminal too unless quiet is set.
func setupLogger(level string, quiet bool) {
	logger := &logx.Logger{}
	if appDir, err := app_dir.GetAppDir(); err == nil {
		logDir := filepath.Join(appDir, "log")
		if err := os.MkdirAll(logDir, 0755); err == nil {
			if l, err := logx.New("file:" + filepath.Join(logDir, "cli.log")); err == nil {
				logger = l
			}
		}
	}
	if level == "" {
		level = "info"
	}
	logger.SetLevelByName(level)
	logger.SetQuite(quiet)
	compiler.SetLogger(logger)
}

func printError(err error) {
	os.Stderr.WriteString(term.Red(strings.TrimSpace(err.Error())) + "\n")
}
