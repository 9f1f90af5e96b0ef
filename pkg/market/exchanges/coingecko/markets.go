package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultOrder = "market_cap_desc"

// GetMarkets fetches one page of the market listing.
func (c *Client) GetMarkets(ctx context.Context, req MarketsRequest) ([]MarketEntry, error) {
	if req.PerPage <= 0 {
		return nil, fmt.Errorf("coingecko: per_page must be positive")
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Order == "" {
		req.Order = defaultOrder
	}
	params := map[string]string{
		"vs_currency":             c.currency,
		"order":                   req.Order,
		"per_page":                strconv.Itoa(req.PerPage),
		"page":                    strconv.Itoa(req.Page),
		"sparkline":               "false",
		"price_change_percentage": strings.Join(changeHorizons, ","),
	}
	var entries []MarketEntry
	if err := c.doGet(ctx, "/coins/markets", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetMarketChart fetches price, market cap and volume history for one asset.
func (c *Client) GetMarketChart(ctx context.Context, req ChartRequest) (*ChartResponse, error) {
	id := strings.TrimSpace(req.AssetID)
	if id == "" {
		return nil, fmt.Errorf("coingecko: asset id required")
	}
	if req.Days <= 0 {
		return nil, fmt.Errorf("coingecko: days must be positive")
	}
	params := map[string]string{
		"vs_currency": c.currency,
		"days":        strconv.Itoa(req.Days),
	}
	if req.Interval != "" {
		params["interval"] = req.Interval
	}
	var chart ChartResponse
	if err := c.doGet(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}
