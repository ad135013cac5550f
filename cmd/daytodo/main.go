package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/daytodo/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "daytodo failed: %v\n", err)
		os.Exit(1)
	}
}
