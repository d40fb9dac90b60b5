// Package main is the entry point for the crosslister CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jdevries/crosslister/cmd/crosslister/cmd"
)

func main() {
	// Credentials and store passwords commonly live in a .env next to the
	// config. A missing file is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
