package reconcile

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	closedPnLPath = "/v5/position/closed-pnl"
	recvWindow    = "5000"
	pageLimit     = 100
)

// ClosedPnLRecord is one settled position from the exchange
type ClosedPnLRecord struct {
	OrderID     string
	Symbol      string
	Side        string // exchange side of the closing order
	AvgEntry    decimal.Decimal
	AvgExit     decimal.Decimal
	Qty         decimal.Decimal
	Leverage    decimal.Decimal
	ClosedPnL   decimal.Decimal
	CreatedTime time.Time
	UpdatedTime time.Time
}

// BybitClient is a minimal Bybit v5 REST client for account reconciliation
type BybitClient struct {
	http      *RateLimitedHTTPClient
	baseURL   string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewBybitClient creates a new Bybit client
func NewBybitClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, apiSecret string) *BybitClient {
	return &BybitClient{
		http:      httpClient,
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

type closedPnLResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		NextPageCursor string `json:"nextPageCursor"`
		List           []struct {
			OrderID     string `json:"orderId"`
			Symbol      string `json:"symbol"`
			Side        string `json:"side"`
			AvgEntry    string `json:"avgEntryPrice"`
			AvgExit     string `json:"avgExitPrice"`
			Qty         string `json:"qty"`
			Leverage    string `json:"leverage"`
			ClosedPnL   string `json:"closedPnl"`
			CreatedTime string `json:"createdTime"`
			UpdatedTime string `json:"updatedTime"`
		} `json:"list"`
	} `json:"result"`
}

// GetClosedPnL fetches settled positions for the category since the given
// time, following pagination cursors until exhausted
func (c *BybitClient) GetClosedPnL(ctx context.Context, category string, since time.Time) ([]ClosedPnLRecord, error) {
	var records []ClosedPnLRecord
	cursor := ""

	for {
		page, nextCursor, err := c.fetchClosedPnLPage(ctx, category, since, cursor)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return records, nil
}

func (c *BybitClient) fetchClosedPnLPage(ctx context.Context, category string, since time.Time, cursor string) ([]ClosedPnLRecord, string, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(pageLimit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	query := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+closedPnLPath+"?"+query, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	c.signRequest(req, query)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("closed pnl request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("closed pnl request returned status %d", resp.StatusCode)
	}

	var parsed closedPnLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.RetCode != 0 {
		return nil, "", fmt.Errorf("exchange error %d: %s", parsed.RetCode, parsed.RetMsg)
	}

	records := make([]ClosedPnLRecord, 0, len(parsed.Result.List))
	for _, raw := range parsed.Result.List {
		rec, err := parseClosedPnLRecord(
			raw.OrderID, raw.Symbol, raw.Side,
			raw.AvgEntry, raw.AvgExit, raw.Qty, raw.Leverage, raw.ClosedPnL,
			raw.CreatedTime, raw.UpdatedTime,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse record %s: %w", raw.OrderID, err)
		}
		records = append(records, rec)
	}

	return records, parsed.Result.NextPageCursor, nil
}

// signRequest adds the v5 authentication headers. The signature covers
// timestamp + api key + recv window + query string.
func (c *BybitClient) signRequest(req *http.Request, query string) {
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(timestamp + c.apiKey + recvWindow + query))
	signature := hex.EncodeToString(mac.Sum(nil))

	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", signature)
}

func parseClosedPnLRecord(orderID, symbol, side, avgEntry, avgExit, qty, leverage, closedPnL, createdMs, updatedMs string) (ClosedPnLRecord, error) {
	rec := ClosedPnLRecord{OrderID: orderID, Symbol: symbol, Side: side}

	var err error
	if rec.AvgEntry, err = decimal.NewFromString(avgEntry); err != nil {
		return rec, fmt.Errorf("bad avg entry %q: %w", avgEntry, err)
	}
	if rec.AvgExit, err = decimal.NewFromString(avgExit); err != nil {
		return rec, fmt.Errorf("bad avg exit %q: %w", avgExit, err)
	}
	if rec.Qty, err = decimal.NewFromString(qty); err != nil {
		return rec, fmt.Errorf("bad qty %q: %w", qty, err)
	}
	if leverage != "" {
		if rec.Leverage, err = decimal.NewFromString(leverage); err != nil {
			return rec, fmt.Errorf("bad leverage %q: %w", leverage, err)
		}
	}
	if rec.ClosedPnL, err = decimal.NewFromString(closedPnL); err != nil {
		return rec, fmt.Errorf("bad closed pnl %q: %w", closedPnL, err)
	}
	if rec.CreatedTime, err = parseMilliTimestamp(createdMs); err != nil {
		return rec, fmt.Errorf("bad created time %q: %w", createdMs, err)
	}
	if rec.UpdatedTime, err = parseMilliTimestamp(updatedMs); err != nil {
		return rec, fmt.Errorf("bad updated time %q: %w", updatedMs, err)
	}

	return rec, nil
}

func parseMilliTimestamp(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
