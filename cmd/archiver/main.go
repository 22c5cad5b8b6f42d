package main

import (
	"os"

	"github.com/sunr3d/archiver-status/cmd/archiver/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
