package main

import (
	"os"

	"github.com/GarrickZ2/grove-sub001/internal/grove/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
