package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/export"
)

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "prenoms.yaml", "path to config file")
	format := fs.String("format", "csv", "csv or xlsx")
	out := fs.String("out", "export", "output directory")
	var qf queryFlags
	qf.register(fs, 0)
	fs.Parse(args)

	if *format != "csv" && *format != "xlsx" {
		fatal("format inconnu %q (csv ou xlsx)", *format)
	}

	cfg, logger := setup(*cfgPath)
	q, err := qf.parse(time.Now())
	if err != nil {
		fatal("%v", err)
	}
	snap, err := openDataset(cfg, qf.dataset, logger)
	if err != nil {
		fatal("%v", err)
	}
	b, err := compute(snap, q)
	if err != nil {
		fatal("%v", err)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fatal("%v", err)
	}
	files, err := writeExport(*out, *format, b)
	if err != nil {
		fatal("%v", err)
	}
	for _, f := range files {
		fmt.Println(f)
	}
}

func writeExport(dir, format string, b export.Bundle) ([]string, error) {
	if format == "xlsx" {
		path := filepath.Join(dir, b.Dataset+".xlsx")
		if err := export.WriteXLSX(path, b); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return export.WriteCSV(dir, b)
}
