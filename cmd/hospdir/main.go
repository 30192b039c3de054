// hospdir - terminal client for the hospital directory API.
package main

import (
	"os"

	"github.com/sofiamatics/hospdir/internal/cli"
)

func main() {
	// cobra has already printed the error
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
