package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/frroossst/readonlylint/internal/logging"
)

func main() {
	err := newRootCmd().Execute()
	_ = logging.Close()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ee.err)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitFailure)
}
