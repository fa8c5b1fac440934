//go:build debug

// Package debug reports recoverable oddities in the input, such as unmatched
// end tags, when the binary is built with the debug tag.
package debug

import (
	"fmt"
	"log"
	"os"
)

var logger = log.New(os.Stderr, "jx debug: ", log.Lmsgprefix|log.Lshortfile)

func Printf(msg string, args ...any) {
	logger.Output(2, fmt.Sprintf(msg, args...))
}
