package main

import (
	"fmt"
	"os"

	"github.com/benvon/flow/cmd/flow/commands"
	"github.com/benvon/flow/internal/graphql"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", graphql.UserMessage(err))
		os.Exit(1)
	}
}
