package main

import (
	"fmt"
	"os"

	"github.com/mica-lang/micals/cmd/micals/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
