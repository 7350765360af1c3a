package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datasheet/internal/cli"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
