package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/api"
	"github.com/hazyhaar/prenoms-registry/pkg/dataset"
	"github.com/hazyhaar/prenoms-registry/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
)

// cmdMCP serves the tools on stdio for local MCP clients.
func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "prenoms.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	reg := dataset.NewRegistry(cfg.DatasetsDir, cfg.CacheDir, logger)
	if err := reg.Load(); err != nil {
		fatal("chargement des datasets: %v", err)
	}
	svc := api.NewService(reg, api.WithDefaultDataset(cfg.DefaultDataset), api.WithLogger(logger))
	if err := server.ServeStdio(newMCPServer(svc)); err != nil {
		fatal("%v", err)
	}
}

// cmdRemote calls one tool on a server over MCP-over-QUIC.
//
//	prenoms remote -addr host:8420 rank_names periods=3,5 limit=10
func cmdRemote(args []string) {
	fs := flag.NewFlagSet("remote", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8420", "server address (UDP)")
	insecure := fs.Bool("insecure", false, "skip TLS certificate verification")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(*insecure))
	if err := c.Connect(ctx); err != nil {
		fatal("%v", err)
	}
	defer c.Close()

	if fs.NArg() == 0 {
		res, err := c.ListTools(ctx)
		if err != nil {
			fatal("%v", err)
		}
		for _, t := range res.Tools {
			fmt.Printf("  %-15s  %s\n", t.Name, t.Description)
		}
		return
	}

	toolArgs, err := parseToolArgs(fs.Args()[1:])
	if err != nil {
		fatal("%v", err)
	}
	out, err := c.CallText(ctx, fs.Arg(0), toolArgs)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Fprintln(os.Stdout, out)
}

// parseToolArgs turns key=value pairs into tool arguments. Integer values
// are sent as numbers.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q, want key=value", p)
		}
		if n, err := strconv.Atoi(v); err == nil {
			args[k] = n
			continue
		}
		args[k] = v
	}
	return args, nil
}
