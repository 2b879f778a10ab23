package kraken

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aristath/cryptofolio/internal/clients/kraken/sdk"
	"github.com/aristath/cryptofolio/internal/domain"
)

// transformTickers converts raw string-array ticker payloads into parsed
// Ticker records.
func transformTickers(raw sdk.TickerResult) (map[string]Ticker, error) {
	tickers := make(map[string]Ticker, len(raw))
	for pair, info := range raw {
		t := Ticker{Pair: pair}

		var err error
		if t.Close, err = firstFloat(info.Close); err != nil {
			return nil, fmt.Errorf("pair %s: close: %w", pair, err)
		}
		// Ask/bid/volume are informational; a missing field is not fatal.
		t.Ask, _ = firstFloat(info.Ask)
		t.Bid, _ = firstFloat(info.Bid)
		if len(info.Volume) > 1 {
			t.Volume24h, _ = strconv.ParseFloat(info.Volume[1], 64)
		}

		tickers[pair] = t
	}
	return tickers, nil
}

// transformBalances parses decimal-string balances into numeric form.
func transformBalances(raw sdk.BalanceResult) (domain.Balances, error) {
	balances := make(domain.Balances, len(raw))
	for asset, qty := range raw {
		v, err := strconv.ParseFloat(qty, 64)
		if err != nil {
			return nil, fmt.Errorf("asset %s: invalid balance %q: %w", asset, qty, err)
		}
		balances[asset] = v
	}
	return balances, nil
}

// transformFills parses raw trade records and orders them chronologically.
// The exchange keys trades by txid, so arrival order is meaningless; the
// ledger's reset rule depends on time order.
func transformFills(raw sdk.TradesHistoryResult) ([]domain.Fill, error) {
	fills := make([]domain.Fill, 0, len(raw.Trades))
	for txid, rec := range raw.Trades {
		fill, err := transformFill(rec)
		if err != nil {
			return nil, fmt.Errorf("trade %s: %w", txid, err)
		}
		fills = append(fills, fill)
	}

	sort.Slice(fills, func(i, j int) bool { return fills[i].Time < fills[j].Time })
	return fills, nil
}

func transformFill(rec sdk.FillRecord) (domain.Fill, error) {
	side := domain.Side(strings.ToLower(rec.Type))
	if side != domain.SideBuy && side != domain.SideSell {
		return domain.Fill{}, fmt.Errorf("unknown trade type %q", rec.Type)
	}

	fill := domain.Fill{
		Pair: rec.Pair,
		Time: rec.Time,
		Type: side,
	}

	var err error
	if fill.Amount, err = strconv.ParseFloat(rec.Vol, 64); err != nil {
		return domain.Fill{}, fmt.Errorf("invalid volume %q: %w", rec.Vol, err)
	}
	if fill.Price, err = strconv.ParseFloat(rec.Price, 64); err != nil {
		return domain.Fill{}, fmt.Errorf("invalid price %q: %w", rec.Price, err)
	}
	if fill.Cost, err = strconv.ParseFloat(rec.Cost, 64); err != nil {
		return domain.Fill{}, fmt.Errorf("invalid cost %q: %w", rec.Cost, err)
	}
	if fill.Fee, err = strconv.ParseFloat(rec.Fee, 64); err != nil {
		return domain.Fill{}, fmt.Errorf("invalid fee %q: %w", rec.Fee, err)
	}
	if rec.Margin != "" {
		if fill.Margin, err = strconv.ParseFloat(rec.Margin, 64); err != nil {
			return domain.Fill{}, fmt.Errorf("invalid margin %q: %w", rec.Margin, err)
		}
	}

	return fill, nil
}

func firstFloat(values []string) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("empty value array")
	}
	return strconv.ParseFloat(values[0], 64)
}

// formatVolume renders a quantity the way the exchange expects: plain
// decimal notation, no exponent.
func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
