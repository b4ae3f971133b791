package cli

import (
	"fmt"
	"os"
)

const VERSION = "1.0.0"

const helpMessage = "\033[30maleph-compiler - Compiles JSX/TypeScript modules for the browser.\033[0m" + `

Usage: aleph-compiler [command] [options]

Commands:
  compile <file|url>                 Compile a module to browser-ready JavaScript
  resolve <referrer> [...specifiers]  Resolve import specifiers of a module
  cache [ls|clean] [host]            Manage the cache of the remote modules
  version                            Show the version

Options:
  --version, -v         Show the version
  --help, -h            Display this help message
`

func Run() {
	if len(os.Args) < 2 {
		fmt.Print(helpMessage)
		return
	}
	switch command := os.Args[1]; command {
	case "compile":
		Compile()
	case "resolve":
		Resolve()
	case "cache":
		Cache()
	case "version":
		fmt.Println("aleph-compiler " + VERSION)
	default:
		for _, arg := range os.Args[1:] {
			if arg == "--version" {
				fmt.Println("aleph-compiler " + VERSION)
				return
			}
			if arg == "-v" {
				fmt.Println(VERSION)
				return
			}
		}
		fmt.Print(helpMessage)
	}
}
