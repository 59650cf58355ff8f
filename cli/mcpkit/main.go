package main

import (
	"os"

	"github.com/fatih/color"
	_ "github.com/viant/scy/kms/blowfish"

	"github.com/viant/mcpkit/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
