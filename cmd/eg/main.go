package main

import (
	"os"

	"github.com/amerryma/express-gateway/cmd/eg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
