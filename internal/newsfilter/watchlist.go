package newsfilter

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadWatchlistSymbols reads ticker symbols from a CSV with a "Symbol"
// column (the NSE index constituents download format). Symbols come
// back upper-cased, de-duplicated, and sorted. A missing or malformed
// file is an error; callers treat the watch-list as optional and keep
// going without it.
func LoadWatchlistSymbols(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("watchlist %s: reading header: %w", path, err)
	}

	symbolCol := -1
	for i, field := range header {
		if strings.EqualFold(strings.TrimSpace(field), "symbol") {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("watchlist %s: no Symbol column", path)
	}

	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if symbolCol >= len(record) {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(record[symbolCol]))
		if symbol != "" {
			seen[symbol] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}
