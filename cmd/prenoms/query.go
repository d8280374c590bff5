package main

import (
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/dataset"
	"github.com/hazyhaar/prenoms-registry/pkg/export"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

// queryFlags are the ranking parameters shared by report and export.
type queryFlags struct {
	dataset string
	sexes   string
	periods string
	year    int
	limit   int
}

func (q *queryFlags) register(fs *flag.FlagSet, defaultLimit int) {
	fs.StringVar(&q.dataset, "dataset", "", "dataset ID (default: default_dataset from config)")
	fs.StringVar(&q.sexes, "sexes", "", "comma-separated sex filter: male, female (empty = both)")
	fs.StringVar(&q.periods, "periods", "3,5,10,20", "comma-separated period lengths in years")
	fs.IntVar(&q.year, "year", 0, "current year; windows end the year before (default: this year)")
	fs.IntVar(&q.limit, "limit", defaultLimit, "maximum ranking rows (0 = all)")
}

type query struct {
	sexes names.SexFilter
	rank  names.RankQuery
	limit int
}

func (q *queryFlags) parse(now time.Time) (query, error) {
	sexes, err := names.ParseSexFilter(q.sexes)
	if err != nil {
		return query{}, err
	}
	var periods []int
	for _, p := range strings.Split(q.periods, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return query{}, fmt.Errorf("invalid period %q", p)
		}
		periods = append(periods, n)
	}
	if periods, err = names.Periods(periods); err != nil {
		return query{}, err
	}
	year := q.year
	if year == 0 {
		year = now.Year()
	}
	return query{
		sexes: sexes,
		rank:  names.RankQuery{Sexes: sexes, Periods: periods, CurrentYear: year},
		limit: q.limit,
	}, nil
}

// openDataset loads one dataset directory without starting a registry.
func openDataset(cfg config, id string, logger *slog.Logger) (*dataset.Snapshot, error) {
	if id == "" {
		id = cfg.DefaultDataset
	}
	if id == "" {
		return nil, fmt.Errorf("no dataset given and no default_dataset configured")
	}
	st, err := dataset.OpenStore(filepath.Join(cfg.DatasetsDir, id), cfg.CacheDir, logger)
	if err != nil {
		return nil, err
	}
	return st.Current(), nil
}

// compute runs the totals and the period ranking for one snapshot.
func compute(snap *dataset.Snapshot, q query) (export.Bundle, error) {
	totals := snap.Totals
	if len(q.sexes) > 0 {
		totals = names.YearlyTotals(snap.Table, q.sexes)
	}
	cmp, err := names.RankByPeriods(snap.Table, q.rank, snap.Classes)
	if err != nil {
		return export.Bundle{}, err
	}
	cmp.Truncate(q.limit)
	return export.Bundle{Dataset: snap.Manifest.ID, Sexes: q.sexes, Totals: totals, Comparison: cmp}, nil
}
