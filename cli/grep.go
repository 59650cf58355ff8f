package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/viant/mcpkit/search"
)

// GrepOptions configure the capability search command. With no focus flag
// every searchable position is matched.
type GrepOptions struct {
	ConnectOptions
	Regex      bool `short:"E" long:"regex" description:"treat the pattern as a regular expression"`
	IgnoreCase bool `short:"i" long:"ignore-case" description:"case-insensitive matching"`

	Names        bool `long:"names" description:"match names"`
	Descriptions bool `long:"descriptions" description:"match descriptions"`
	Input        bool `long:"input" description:"match input schema fields"`
	Output       bool `long:"output" description:"match output schema fields"`

	Tool string `short:"t" long:"tool" description:"restrict the search to one tool"`
}

func runGrep(args []string) error {
	options := &GrepOptions{}
	rest, err := flags.ParseArgs(options, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("grep expects exactly one pattern argument")
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
	matches, err := search.Search(search.Query{
		Pattern:    rest[0],
		Regex:      options.Regex,
		IgnoreCase: options.IgnoreCase,
		Focus: search.Focus{
			Names:        options.Names,
			Descriptions: options.Descriptions,
			Input:        options.Input,
			Output:       options.Output,
		},
		Tool: options.Tool,
	}, model)
	if err != nil {
		return err
	}
	renderMatches(os.Stdout, matches)
	return nil
}
