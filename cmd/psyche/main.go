package main

import (
	"fmt"
	"os"

	"github.com/zeusync/psyche/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "psyche:", err)
		os.Exit(1)
	}
}
