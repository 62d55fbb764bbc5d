// Package loyverse fetches receipts from the Loyverse POS API and converts
// them to domain receipts.
package loyverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL  = "https://api.loyverse.com/v1.0"
	DefaultPageSize = 250
	maxPageSize     = 250

	timeLayout = "2006-01-02T15:04:05.000Z"
)

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("loyverse api error %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RawReceipt pairs a normalized receipt with the payload it came from.
type RawReceipt struct {
	Receipt   domain.Receipt
	RefundFor string
	Payload   json.RawMessage
}

type InvalidRecord struct {
	ReceiptNumber string `json:"receipt_number"`
	Reason        string `json:"reason"`
}

type Page struct {
	Receipts   []RawReceipt
	Invalid    []InvalidRecord
	NextCursor string
}

type Config struct {
	BaseURL     string
	AccessToken string
	StoreID     string
	PageSize    int
	MinorUnits  bool // amounts are reported in satang and must be divided by 100
	MaxRetries  int
	RetryDelay  time.Duration
	HTTPClient  *http.Client
	Logger      logrus.FieldLogger
}

type Client struct {
	baseURL    string
	token      string
	storeID    string
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	http       *http.Client
	norm       normalizer
	validate   *validator.Validate
	logger     logrus.FieldLogger
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = config.GetLogger()
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.AccessToken,
		storeID:    cfg.StoreID,
		pageSize:   pageSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
		http:       httpClient,
		norm:       normalizer{minorUnits: cfg.MinorUnits},
		validate:   newValidator(),
		logger:     logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if n, ok := field.Interface().(Number); ok && n.Valid {
			return n.Decimal.String()
		}
		return ""
	}, Number{})
	return v
}

// FetchReceipts returns one page of receipts created in [start, end).
// Records that fail validation are reported in Page.Invalid and do not fail
// the page.
func (c *Client) FetchReceipts(ctx context.Context, start, end time.Time, cursor string) (*Page, error) {
	params := url.Values{}
	if c.storeID != "" {
		params.Set("store_id", c.storeID)
	}
	params.Set("created_at_min", start.UTC().Format(timeLayout))
	params.Set("created_at_max", end.UTC().Format(timeLayout))
	params.Set("limit", strconv.Itoa(c.pageSize))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	body, err := c.getWithRetry(ctx, "/receipts", params)
	if err != nil {
		return nil, err
	}

	var resp receiptsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode receipts envelope: %w", err)
	}

	page := &Page{NextCursor: resp.Cursor}
	for _, raw := range resp.Receipts {
		rec, invalid := c.parse(raw)
		if invalid != nil {
			c.logger.WithFields(logrus.Fields{
				"module":        "loyverse",
				"receiptNumber": invalid.ReceiptNumber,
			}).Warn("skipping invalid receipt: " + invalid.Reason)
			page.Invalid = append(page.Invalid, *invalid)
			continue
		}
		page.Receipts = append(page.Receipts, *rec)
	}
	return page, nil
}

func (c *Client) parse(raw json.RawMessage) (*RawReceipt, *InvalidRecord) {
	var p ReceiptPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &InvalidRecord{Reason: "malformed record: " + err.Error()}
	}
	if err := c.validate.Struct(p); err != nil {
		return nil, &InvalidRecord{ReceiptNumber: p.ReceiptNumber, Reason: validationReason(err)}
	}
	r, err := c.norm.receipt(p)
	if err != nil {
		return nil, &InvalidRecord{ReceiptNumber: p.ReceiptNumber, Reason: err.Error()}
	}
	return &RawReceipt{Receipt: r, RefundFor: p.RefundFor, Payload: raw}, nil
}

func validationReason(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+":"+fe.Tag())
	}
	return "invalid fields " + strings.Join(parts, ",")
}

func (c *Client) getWithRetry(ctx context.Context, path string, params url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryDelay * time.Duration(1<<min(attempt-1, 5))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		body, err := c.get(ctx, path, params)
		if err == nil {
			return body, nil
		}
		lastErr = err
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
