package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "serve":
		cmdServe(args)
	case "import":
		cmdImport(args)
	case "report":
		cmdReport(args)
	case "export":
		cmdExport(args)
	case "mcp":
		cmdMCP(args)
	case "remote":
		cmdRemote(args)
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: prenoms <command> [flags]

Commands:
  serve    Start the HTTP API (and HTTP/3 + MCP over QUIC when TLS is enabled)
  import   Download a public first-name registry into the datasets directory
  report   Print yearly totals, a name's history and the period ranking
  export   Write totals and ranking as CSV files or an XLSX workbook
  mcp      Serve the MCP tools on stdin/stdout
  remote   Call an MCP tool on a server over QUIC
  version  Print the version
`)
}

// fatal prints err and exits.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Erreur: "+format+"\n", args...)
	os.Exit(1)
}
