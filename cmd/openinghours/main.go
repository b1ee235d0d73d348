package main

import (
	"fmt"
	"os"

	"github.com/rendis/openinghours/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		var err error
		switch os.Args[1] {
		case "run":
			err = runPoll(os.Args[2:])
		case "export":
			err = runExport(os.Args[2:])
		case "explore":
			err = runExplore(os.Args[2:])
		case "version":
			fmt.Println("openinghours " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			printUsage()
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// No subcommand → launch TUI
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `openinghours - shop opening hours from Google Places

Usage:
  openinghours                  Launch interactive TUI
  openinghours run [flags]      Poll every configured shop once
  openinghours export [flags]   Export a state .db to CSV or JSON
  openinghours explore -db F    Browse a state .db in the TUI
  openinghours version          Show version

Run 'openinghours run --help' or 'openinghours export --help' for flags.
`)
}
