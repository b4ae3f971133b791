package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ije/gox/term"
)

const cacheHelpMessage = `Manage the cache of the remote modules.

Usage: aleph-compiler cache [sub-command] [host]

Sub Commands:
  ls      [host]   List the cached modules
  clean   [host]   Delete the cached modules
`

// Cache manages the remote module cache.
func Cache() {
	args, help := parseCommandFlags()
	if help || len(args) == 0 {
		fmt.Print(cacheHelpMessage)
		return
	}
	cache, err := newModuleCache()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	prefix := "modules/"
	if len(args) > 1 {
		prefix = "modules/https/" + strings.TrimSuffix(args[1], "/") + "/"
	}
	switch args[0] {
	case "ls":
		keys, err := cache.list(prefix)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		for _, key := range keys {
			fmt.Println(key)
		}
	case "clean":
		n, err := cache.clean(prefix)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		fmt.Println(term.Green("✔"), fmt.Sprintf("%d modules deleted", n))
	default:
		fmt.Printf("Unknown sub command \"%s\"\n", args[0])
	}
}
