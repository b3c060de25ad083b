// Command safemap queries the crime datasets from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "search":
		Search(os.Args[2:])
	case "report":
		Report(os.Args[2:])
	case "chart":
		Chart(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: safemap <command>\n\nCommands:\n  search   Search boroughs and areas by name\n  report   Print a crime data summary\n  chart    Render a crime-type bar chart for a borough\n")
}
