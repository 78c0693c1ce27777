package main

import (
	"os"

	"github.com/sagkhr23/linkdin-auto-reply/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
