package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/pressgauge/pressgauge/internal/cli"
)

func main() {
	// .env is optional; environment variables win when both are set
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
