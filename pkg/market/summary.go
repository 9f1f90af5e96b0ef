package market

// Summary aggregates a snapshot batch into market-wide figures.
type Summary struct {
	TotalMarketCap float64        `json:"totalMarketCap"`
	TotalVolume    float64        `json:"totalVolume"`
	Advancing      int            `json:"advancing"`
	Declining      int            `json:"declining"`
	TopGainer      *AssetSnapshot `json:"topGainer,omitempty"`
	TopLoser       *AssetSnapshot `json:"topLoser,omitempty"`
}

// Summarize totals market cap and volume and picks the largest 24h mover in
// each direction. Unchanged assets count as neither advancing nor declining.
func Summarize(snapshots []AssetSnapshot) Summary {
	var sum Summary
	var gainer, loser *AssetSnapshot
	for i := range snapshots {
		snap := &snapshots[i]
		sum.TotalMarketCap += snap.MarketCap
		sum.TotalVolume += snap.TotalVolume
		switch {
		case snap.Change24h > 0:
			sum.Advancing++
		case snap.Change24h < 0:
			sum.Declining++
		}
		if gainer == nil || snap.Change24h > gainer.Change24h {
			gainer = snap
		}
		if loser == nil || snap.Change24h < loser.Change24h {
			loser = snap
		}
	}
	if gainer != nil {
		g := CloneSnapshots([]AssetSnapshot{*gainer})[0]
		l := CloneSnapshots([]AssetSnapshot{*loser})[0]
		sum.TopGainer, sum.TopLoser = &g, &l
	}
	return sum
}
