// cmd/stagehand/main.go
//
// Stagehand – container bootstrap entry point.
//
// Life-cycle
// ----------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Hand off to the CLI: `build` runs the gated build sequence,
//     `run` restores the frozen environment and launches the server,
//     `build --run` does both in one container.
//
//  3. Exit with 0 on success, the external process's status when an
//     installer or server run failed, else 1.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/yanizio/stagehand/internal/cli"
)

const serverEnvPath = "/usr/local/etc/stagehand/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

func init() { loadEnv() }

func main() {
	os.Exit(cli.Execute())
}
