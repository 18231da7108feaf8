package main

import (
	"os"

	"paper_trader/cmd/paper_trader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
