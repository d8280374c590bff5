package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/render"
	"golang.org/x/term"
)

func cmdReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", "prenoms.yaml", "path to config file")
	name := fs.String("name", "", "also print the yearly history of this name")
	color := fs.String("color", "auto", "auto, always or never")
	width := fs.Int("name-width", 24, "maximum width of the name column (0 = no cap)")
	var qf queryFlags
	qf.register(fs, 50)
	fs.Parse(args)

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

	r := render.New(os.Stdout, render.Options{Color: useColor(*color), NameWidth: *width})
	fmt.Println(r.Totals(b.Totals, q.sexes))
	if *name != "" {
		s := names.SeriesForName(snap.Table, *name)
		if s.Empty() {
			fmt.Fprintf(os.Stderr, "%s: aucune naissance enregistree\n", *name)
		} else {
			fmt.Println(r.Series(s, snap.Classes.Of(s.Name)))
		}
	}
	fmt.Println(r.Comparison(b.Comparison))
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
}
