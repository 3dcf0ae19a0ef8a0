package main

import (
	"os"

	"github.com/ensa-hoceima/hr-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
