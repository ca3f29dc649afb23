package main

import (
	"os"

	"github.com/wonny/happiness/cmd/happiness/commands"
)

// main is the entry point for the happiness CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/happiness [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
