package main

import (
	"log/slog"
	"os"
)

// logLevel is lowered to debug by --debug
var logLevel = new(slog.LevelVar)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("clipslate failed", "error", err)
		os.Exit(1)
	}
}
