package cli

import (
	"context"
	"os"

	"github.com/jessevdk/go-flags"
)

// InfoOptions configure the capability snapshot command.
type InfoOptions struct {
	ConnectOptions
	Schemas bool `short:"s" long:"schemas" description:"include tool input and output schemas"`
}

func runInfo(args []string) error {
	options := &InfoOptions{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	setupLogging(options.Verbose)

	ctx := context.Background()
	session, err := options.session(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	model, err := session.Capabilities(ctx)
	if err != nil {
		return err
	}
	renderModel(os.Stdout, model, options.Schemas)
	return nil
}
