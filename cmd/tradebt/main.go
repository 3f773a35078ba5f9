package main

import (
	"os"

	"github.com/rustyeddy/tradebt/cmd/tradebt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
