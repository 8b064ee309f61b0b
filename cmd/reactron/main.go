// Command reactron runs the reactron demo engine.
package main

import (
	"os"

	"github.com/go-drift/reactron/cmd/reactron/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
