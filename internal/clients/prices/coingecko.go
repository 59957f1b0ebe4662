package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// coinIDs maps ticker symbols to CoinGecko coin identifiers. Symbols outside
// this map cannot be priced and fail the lookup.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDC": "usd-coin",
	"USDT": "tether",
	"GRT":  "the-graph",
	"SOL":  "solana",
}

// Client fetches crypto price samples from the CoinGecko market chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a price client against the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

var _ portssvc.CryptoPriceProvider = (*Client)(nil)

// marketChartResponse mirrors the /market_chart/range payload: each sample is
// a [unix-milliseconds, price] pair.
type marketChartResponse struct {
	Prices [][2]json.Number `json:"prices"`
}

// FetchRange implements portssvc.CryptoPriceProvider. Samples come back
// oldest first.
func (c *Client) FetchRange(ctx context.Context, symbol, against string, from, to time.Time) ([]portssvc.PricePoint, error) {
	coinID, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("unknown crypto symbol %q", symbol)
	}

	query := url.Values{}
	query.Set("vs_currency", strings.ToLower(against))
	query.Set("from", strconv.FormatInt(from.Unix(), 10))
	query.Set("to", strconv.FormatInt(to.Unix(), 10))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.baseURL, coinID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request for %s/%s failed: %w", symbol, against, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d for %s/%s", resp.StatusCode, symbol, against)
	}

	var payload marketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	points := make([]portssvc.PricePoint, 0, len(payload.Prices))
	for _, sample := range payload.Prices {
		millis, err := sample[0].Int64()
		if err != nil {
			return nil, fmt.Errorf("malformed sample timestamp %q: %w", sample[0], err)
		}
		price, err := decimal.NewFromString(sample[1].String())
		if err != nil {
			return nil, fmt.Errorf("malformed sample price %q: %w", sample[1], err)
		}
		points = append(points, portssvc.PricePoint{
			Timestamp: time.UnixMilli(millis).UTC(),
			Price:     price,
		})
	}
	return points, nil
}
