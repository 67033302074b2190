// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting AgroSilo Telemetry Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ___                      _____ _ __       ",
		"   /   | ____ __________    / ___/(_) /___    ",
		"  / /| |/ __ `/ ___/ __ \\   \\__ \\/ / / __ \\   ",
		" / ___ / /_/ / /  / /_/ /  ___/ / / / /_/ /   ",
		"/_/  |_\\__, /_/   \\____/  /____/_/_/\\____/    ",
		"      /____/                                  ",
		"..............................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
