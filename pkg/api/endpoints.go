package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/dataset"
	"github.com/hazyhaar/prenoms-registry/pkg/kit"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

// Request and response types shared by the HTTP and MCP transports.

type datasetsResponse struct {
	Datasets []dataset.Info `json:"datasets"`
}

type totalsReq struct {
	Dataset string
	Sexes   names.SexFilter
}

type totalsResponse struct {
	Dataset string              `json:"dataset"`
	Sexes   []string            `json:"sexes"`
	Totals  []names.YearlyTotal `json:"totals"`
}

type seriesReq struct {
	Dataset string
	Name    string
}

type seriesResponse struct {
	Dataset string `json:"dataset"`
	names.Series
	Total    int            `json:"total"`
	Category names.Category `json:"category,omitempty"`
}

type rankReq struct {
	Dataset string
	Sexes   names.SexFilter
	Periods []int
	Year    int // 0 means the current calendar year
	Limit   int
}

type rankResponse struct {
	Dataset string   `json:"dataset"`
	Sexes   []string `json:"sexes"`
	*names.Comparison
}

// Service resolves dataset IDs and builds the endpoints.
type Service struct {
	reg            *dataset.Registry
	defaultDataset string
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultDataset sets the dataset used when a request names none.
func WithDefaultDataset(id string) Option { return func(s *Service) { s.defaultDataset = id } }

// WithLogger sets the endpoint logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock overrides the clock the current year is read from.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(reg *dataset.Registry, opts ...Option) *Service {
	s := &Service{reg: reg, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// snapshot returns the current snapshot of a dataset, falling back to the
// default dataset for an empty ID.
func (s *Service) snapshot(id string) (*dataset.Snapshot, error) {
	if id == "" {
		id = s.defaultDataset
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no dataset given and no default configured", kit.ErrInvalidArgument)
	}
	st, err := s.reg.Get(id)
	if err != nil {
		if errors.Is(err, dataset.ErrUnknownDataset) {
			return nil, fmt.Errorf("%w: %w", kit.ErrNotFound, err)
		}
		return nil, err
	}
	return st.Snapshot(), nil
}

// wrap applies the standard middleware stack to a named endpoint.
func (s *Service) wrap(name string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Recover(s.logger), kit.Logging(s.logger, name))(ep)
}

func (s *Service) listDatasetsEndpoint() kit.Endpoint {
	return s.wrap("list_datasets", func(_ context.Context, _ any) (any, error) {
		return datasetsResponse{Datasets: s.reg.List()}, nil
	})
}

func (s *Service) totalsEndpoint() kit.Endpoint {
	return s.wrap("yearly_totals", func(_ context.Context, request any) (any, error) {
		req := request.(*totalsReq)
		snap, err := s.snapshot(req.Dataset)
		if err != nil {
			return nil, err
		}
		totals := snap.Totals
		if len(req.Sexes) > 0 {
			totals = names.YearlyTotals(snap.Table, req.Sexes)
		}
		return totalsResponse{Dataset: snap.Manifest.ID, Sexes: req.Sexes.Names(), Totals: totals}, nil
	})
}

func (s *Service) seriesEndpoint() kit.Endpoint {
	return s.wrap("name_series", func(_ context.Context, request any) (any, error) {
		req := request.(*seriesReq)
		if names.Canonicalize(req.Name) == "" {
			return nil, fmt.Errorf("%w: empty name", kit.ErrInvalidArgument)
		}
		snap, err := s.snapshot(req.Dataset)
		if err != nil {
			return nil, err
		}
		series := names.SeriesForName(snap.Table, req.Name)
		return seriesResponse{
			Dataset:  snap.Manifest.ID,
			Series:   series,
			Total:    series.Total(),
			Category: snap.Classes.Of(series.Name),
		}, nil
	})
}

func (s *Service) rankEndpoint() kit.Endpoint {
	return s.wrap("rank_names", func(_ context.Context, request any) (any, error) {
		req := request.(*rankReq)
		snap, err := s.snapshot(req.Dataset)
		if err != nil {
			return nil, err
		}
		year := req.Year
		if year == 0 {
			year = s.now().Year()
		}
		comp, err := names.RankByPeriods(snap.Table, names.RankQuery{
			Sexes:       req.Sexes,
			Periods:     req.Periods,
			CurrentYear: year,
		}, snap.Classes)
		if err != nil {
			if errors.Is(err, names.ErrInvalidPeriod) {
				return nil, fmt.Errorf("%w: %w", kit.ErrInvalidArgument, err)
			}
			return nil, err
		}
		comp.Truncate(req.Limit)
		return rankResponse{Dataset: snap.Manifest.ID, Sexes: req.Sexes.Names(), Comparison: comp}, nil
	})
}
