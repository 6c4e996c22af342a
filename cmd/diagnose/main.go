// Command diagnose resolves satellite product files and reports what the
// resolved source offers.
package main

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-swath/cmd/diagnose/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
