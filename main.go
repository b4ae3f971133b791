package main

import (
	"github.com/alephjs/aleph-compiler/cli"
)

func main() {
	cli.Run()
}
