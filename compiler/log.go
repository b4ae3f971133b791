package compiler

import (
	logx "github.com/ije/gox/log"
)

var (
	log *logx.Logger
)

// SetLogger sets the logger of the compiler.
func SetLogger(logger *logx.Logger) {
	log = logger
}

func init() {
	// quiet by default, the host may print compiled code to stdout
	log = &logx.Logger{}
	log.SetLevelByName("info")
	log.SetQuite(true)
}
