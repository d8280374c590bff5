package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "prenoms.yaml", "path to config file")
	source := fs.String("source", "", "adapter ID to import (e.g. insee-prenoms-fr)")
	all := fs.Bool("all", false, "import all available sources")
	outputDir := fs.String("output-dir", "", "output directory for datasets (default: datasets_dir from config)")
	setURL := fs.String("url", "", "store a new download URL for --source before importing")
	check := fs.Bool("check", false, "check that every source URL is reachable, then exit")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	if *outputDir == "" {
		*outputDir = cfg.DatasetsDir
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatal("%v", err)
	}

	sdb, err := importer.OpenSourceDB(filepath.Join(*outputDir, "sources.db"))
	if err != nil {
		fatal("ouverture sources.db: %v", err)
	}
	defer sdb.Close()

	if err := sdb.Seed(importer.All()); err != nil {
		fatal("seed sources: %v", err)
	}

	if *check {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		sum := importer.NewChecker(sdb, logger, 0).CheckAll(ctx)
		fmt.Printf("%d/%d sources joignables\n", sum.OK, sum.Total)
		for _, id := range sum.Failed {
			fmt.Printf("  injoignable: %s\n", id)
		}
		if len(sum.Failed) > 0 {
			os.Exit(1)
		}
		return
	}

	if !*all && *source == "" {
		listSources(sdb)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if *all {
		failed := 0
		for _, a := range importer.All() {
			if err := runImport(ctx, sdb, a, *outputDir); err != nil {
				fmt.Fprintf(os.Stderr, "[%s] ERREUR: %v\n", a.ID(), err)
				failed++
				continue
			}
			fmt.Printf("[%s] OK\n", a.ID())
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	a, err := importer.Get(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erreur: %v\n", err)
		fmt.Println("\nSources disponibles :")
		for _, id := range importer.IDs() {
			fmt.Printf("  %s\n", id)
		}
		os.Exit(1)
	}

	if *setURL != "" {
		if err := sdb.SetURL(a.ID(), *setURL); err != nil {
			fatal("[%s] URL: %v", a.ID(), err)
		}
	}

	if err := runImport(ctx, sdb, a, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERREUR: %v\n", a.ID(), err)
		os.Exit(1)
	}
	fmt.Printf("[%s] OK -> %s/%s/\n", a.ID(), *outputDir, a.DatasetID())
}

func runImport(ctx context.Context, sdb *importer.SourceDB, a importer.Adapter, outputDir string) error {
	url, err := sdb.GetURL(a.ID())
	if err != nil {
		return fmt.Errorf("URL: %w", err)
	}
	fmt.Printf("[%s] Import en cours...\n", a.ID())
	if err := a.Import(ctx, url, outputDir); err != nil {
		return err
	}
	return sdb.MarkImported(a.ID(), time.Now())
}

func listSources(sdb *importer.SourceDB) {
	fmt.Println("Sources disponibles :")
	fmt.Println()
	sources, err := sdb.ListSources()
	if err != nil {
		fatal("liste des sources: %v", err)
	}
	for _, src := range sources {
		status := ""
		if src.LastStatus != nil {
			status = fmt.Sprintf("  [%d]", *src.LastStatus)
		}
		imported := ""
		if src.LastImport != nil {
			imported = "  importe le " + time.Unix(*src.LastImport, 0).Format("2006-01-02")
		}
		fmt.Printf("  %-20s  %s  (-> %s)%s%s\n", src.AdapterID, src.Description, src.DatasetID, status, imported)
	}
	fmt.Println()
	fmt.Println("Usage :")
	fmt.Println("  prenoms import --source <id> [--output-dir <dir>] [--url <url>]")
	fmt.Println("  prenoms import --all [--output-dir <dir>]")
	fmt.Println("  prenoms import --check")
}
