package main

import (
	"os"

	"github.com/marthaea/link-guardian-safecheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
