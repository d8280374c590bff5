package api

import (
	"fmt"
	"strconv"

	"github.com/hazyhaar/prenoms-registry/pkg/kit"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the registry tools on srv.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	kit.RegisterMCPTool(srv, mcp.NewTool("list_datasets",
		mcp.WithDescription("List the loaded birth-name datasets with their jurisdiction, year span and name count."),
	), svc.listDatasetsEndpoint(), func(mcp.CallToolRequest) (any, error) {
		return nil, nil
	})

	kit.RegisterMCPTool(srv, mcp.NewTool("yearly_totals",
		mcp.WithDescription("Total births and distinct names per year for a dataset, optionally restricted to one sex."),
		mcp.WithString("dataset", mcp.Description("Dataset ID (e.g. prenoms-fr). Defaults to the server's default dataset.")),
		mcp.WithString("sexes", mcp.Description("Comma-separated sex filter: male, female. Empty means both.")),
	), svc.totalsEndpoint(), decodeTotals)

	kit.RegisterMCPTool(srv, mcp.NewTool("name_series",
		mcp.WithDescription("Yearly birth counts of one first name, per sex. Accents and case are ignored."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The first name to look up")),
		mcp.WithString("dataset", mcp.Description("Dataset ID")),
	), svc.seriesEndpoint(), decodeSeries)

	kit.RegisterMCPTool(srv, mcp.NewTool("rank_names",
		mcp.WithDescription("Rank first names by average yearly births over the last N complete years, for several N at once."),
		mcp.WithString("dataset", mcp.Description("Dataset ID")),
		mcp.WithString("sexes", mcp.Description("Comma-separated sex filter: male, female. Empty means both.")),
		mcp.WithString("periods", mcp.Description("Comma-separated period lengths in years (default 3,5,10,20)")),
		mcp.WithNumber("year", mcp.Description("Current year; windows end the year before. Defaults to this year.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of rows (default 20)")),
	), svc.rankEndpoint(), decodeRank)
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// intArg accepts JSON numbers and numeric strings.
func intArg(req mcp.CallToolRequest, key string) (int, error) {
	switch v := req.GetArguments()[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return int(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("%s: unexpected type %T", key, v)
	}
}

func decodeTotals(req mcp.CallToolRequest) (any, error) {
	sexes, err := names.ParseSexFilter(stringArg(req, "sexes"))
	if err != nil {
		return nil, err
	}
	return &totalsReq{Dataset: stringArg(req, "dataset"), Sexes: sexes}, nil
}

func decodeSeries(req mcp.CallToolRequest) (any, error) {
	name := stringArg(req, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return &seriesReq{Dataset: stringArg(req, "dataset"), Name: name}, nil
}

const defaultMCPLimit = 20

func decodeRank(req mcp.CallToolRequest) (any, error) {
	sexes, err := names.ParseSexFilter(stringArg(req, "sexes"))
	if err != nil {
		return nil, err
	}
	periods, err := parseInts(stringArg(req, "periods"))
	if err != nil {
		return nil, fmt.Errorf("periods: %w", err)
	}
	year, err := intArg(req, "year")
	if err != nil {
		return nil, err
	}
	limit, err := intArg(req, "limit")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMCPLimit
	}
	return &rankReq{
		Dataset: stringArg(req, "dataset"),
		Sexes:   sexes,
		Periods: periods,
		Year:    year,
		Limit:   limit,
	}, nil
}
