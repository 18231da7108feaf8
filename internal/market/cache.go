package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// priceWindow is how many recent closes the simulated price is drawn from.
const priceWindow = 50

// CacheProvider serves prices from a local directory of per-symbol CSV
// files (SYMBOL.csv with Date,Open,High,Low,Close[,Adj Close][,Volume]
// columns, the usual daily-bar export shape).
//
// The simulated "latest" price is a random draw from the last 50 closes,
// which gives cycles realistic price movement without a live feed. The RNG
// is seeded so a fixed seed reproduces a run exactly.
type CacheProvider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	series map[string][]Candle
}

// NewCacheProvider eagerly loads every CSV under dir. Files that fail to
// parse are logged and skipped; an empty cache is an error since the
// simulation would have nothing to trade.
func NewCacheProvider(dir string, seed int64) (*CacheProvider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("market cache: read dir %q: %w", dir, err)
	}

	p := &CacheProvider{
		rng:    rand.New(rand.NewSource(seed)),
		series: make(map[string][]Candle),
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		symbol := strings.TrimSuffix(name, ".csv")
		candles, err := loadCandleCSV(filepath.Join(dir, name))
		if err != nil {
			log.Printf("WARNING: market cache: skipping %s: %v", name, err)
			continue
		}
		p.series[symbol] = candles
		log.Printf("Loaded %d bars for %s", len(candles), symbol)
	}
	if len(p.series) == 0 {
		return nil, fmt.Errorf("market cache: no usable CSV files in %q", dir)
	}
	return p, nil
}

// Symbols lists every cached symbol in sorted order.
func (p *CacheProvider) Symbols() []string {
	symbols := make([]string, 0, len(p.series))
	for s := range p.series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// LatestPrice draws a simulated price from the symbol's recent closes.
func (p *CacheProvider) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	_ = ctx

	candles, ok := p.series[symbol]
	if !ok || len(candles) == 0 {
		return decimal.Decimal{}, false, nil
	}

	window := candles
	if len(window) > priceWindow {
		window = window[len(window)-priceWindow:]
	}

	p.mu.Lock()
	pick := window[p.rng.Intn(len(window))]
	p.mu.Unlock()

	return decimal.NewFromFloat(pick.Close), true, nil
}

// Candles returns up to n of the most recent bars, oldest first.
func (p *CacheProvider) Candles(ctx context.Context, symbol string, n int) ([]Candle, error) {
	_ = ctx

	candles, ok := p.series[symbol]
	if !ok {
		return nil, fmt.Errorf("market cache: no data for %q", symbol)
	}
	if n > 0 && len(candles) > n {
		candles = candles[len(candles)-n:]
	}
	out := make([]Candle, len(candles))
	copy(out, candles)
	return out, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func loadCandleCSV(path string) ([]Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	// Column positions by header name; exports differ on whether they carry
	// an index column named Date or Datetime, and on Adj Close/Volume.
	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateIdx, ok := col["date"]
	if !ok {
		if dateIdx, ok = col["datetime"]; !ok {
			dateIdx = 0
		}
	}
	for _, required := range []string{"open", "high", "low", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	candles := make([]Candle, 0, len(rows)-1)
	for _, row := range rows[1:] {
		c, err := parseCandleRow(row, col, dateIdx)
		if err != nil {
			continue // tolerate the odd malformed row
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no parsable rows")
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

func parseCandleRow(row []string, col map[string]int, dateIdx int) (Candle, error) {
	var c Candle
	if dateIdx >= len(row) {
		return c, fmt.Errorf("short row")
	}

	var err error
	for _, layout := range dateLayouts {
		if c.Time, err = time.Parse(layout, row[dateIdx]); err == nil {
			break
		}
	}
	if err != nil {
		return c, fmt.Errorf("bad date %q", row[dateIdx])
	}

	field := func(name string) (float64, error) {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return 0, fmt.Errorf("missing %q", name)
		}
		return strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	}

	if c.Open, err = field("open"); err != nil {
		return c, err
	}
	if c.High, err = field("high"); err != nil {
		return c, err
	}
	if c.Low, err = field("low"); err != nil {
		return c, err
	}
	if c.Close, err = field("close"); err != nil {
		return c, err
	}
	c.Volume, _ = field("volume") // optional
	return c, nil
}
