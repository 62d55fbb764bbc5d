package loyverse_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"backoffice-backend/internal/loyverse"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageOne = `{
  "receipts": [
    {
      "receipt_number": "6-36175",
      "receipt_type": "SALE",
      "created_at": "2025-06-01T11:15:00.000Z",
      "total_money": 30000,
      "line_items": [
        {"item_name": "Classic Smash Burger", "quantity": 2, "total_money": 28000,
         "line_modifiers": [{"name": "Extras", "option": "Extra Cheese", "money_amount": 4000}]},
        {"item_name": "Coke", "quantity": "not-a-number", "total_money": 2000}
      ],
      "payments": [{"payment_type_id": "p1", "name": "Cash", "type": "CASH", "money_amount": 30000}]
    },
    {
      "receipt_number": "",
      "created_at": "2025-06-01T11:20:00.000Z",
      "total_money": 100
    },
    {
      "receipt_number": "6-36177",
      "receipt_type": "REFUND",
      "refund_for": "6-36175",
      "created_at": "2025-06-01T12:00:00.000Z",
      "total_money": 10000,
      "payments": [{"payment_type_id": "p1", "type": "CASH", "money_amount": 10000}]
    }
  ],
  "cursor": "next-1"
}`

func newClient(t *testing.T, srv *httptest.Server, minor bool) *loyverse.Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return loyverse.NewClient(loyverse.Config{
		BaseURL:     srv.URL,
		AccessToken: "token-123",
		StoreID:     "store-1",
		MinorUnits:  minor,
		RetryDelay:  time.Millisecond,
		Logger:      logger,
	})
}

func TestFetchReceipts_NormalizesAndSkipsInvalid(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/receipts", r.URL.Path)
		_, _ = w.Write([]byte(pageOne))
	}))
	defer srv.Close()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	page, err := newClient(t, srv, true).FetchReceipts(context.Background(), start, start.Add(10*time.Hour), "")
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Contains(t, gotQuery, "store_id=store-1")
	assert.Contains(t, gotQuery, "created_at_min=2025-06-01T10%3A00%3A00.000Z")
	assert.Contains(t, gotQuery, "created_at_max=2025-06-01T20%3A00%3A00.000Z")
	assert.Contains(t, gotQuery, "limit=250")
	assert.NotContains(t, gotQuery, "cursor=")

	assert.Equal(t, "next-1", page.NextCursor)
	require.Len(t, page.Invalid, 1)
	require.Len(t, page.Receipts, 2)

	sale := page.Receipts[0].Receipt
	assert.Equal(t, "6-36175", sale.ID)
	assert.True(t, decimal.NewFromInt(300).Equal(sale.TotalMoney), sale.TotalMoney.String())
	assert.Equal(t, "Cash", sale.PaymentLabel)
	assert.False(t, sale.IsRefund())
	require.Len(t, sale.LineItems, 2)
	assert.True(t, decimal.NewFromInt(280).Equal(sale.LineItems[0].LineTotal))
	assert.True(t, sale.LineItems[0].Quantity.Valid)
	assert.False(t, sale.LineItems[1].Quantity.Valid)
	require.Len(t, sale.LineItems[0].Modifiers, 1)
	assert.Equal(t, "Extra Cheese", sale.LineItems[0].Modifiers[0].Name)
	assert.True(t, decimal.NewFromInt(40).Equal(sale.LineItems[0].Modifiers[0].Cost))
	assert.NotEmpty(t, page.Receipts[0].Payload)

	refund := page.Receipts[1].Receipt
	assert.True(t, refund.IsRefund())
	assert.Equal(t, "6-36175", refund.RefundedBy)
	assert.True(t, decimal.NewFromInt(-100).Equal(refund.TotalMoney), refund.TotalMoney.String())
	assert.Equal(t, "CASH", refund.PaymentLabel)
}

func TestFetchReceipts_MinorUnitsDividedExactlyOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageOne))
	}))
	defer srv.Close()

	now := time.Now()
	major, err := newClient(t, srv, false).FetchReceipts(context.Background(), now, now, "")
	require.NoError(t, err)
	minor, err := newClient(t, srv, true).FetchReceipts(context.Background(), now, now, "")
	require.NoError(t, err)

	for i := range major.Receipts {
		x := major.Receipts[i].Receipt.TotalMoney
		assert.True(t, x.Div(decimal.NewFromInt(100)).Equal(minor.Receipts[i].Receipt.TotalMoney))
		for j := range major.Receipts[i].Receipt.LineItems {
			xi := major.Receipts[i].Receipt.LineItems[j].LineTotal
			assert.True(t, xi.Div(decimal.NewFromInt(100)).Equal(minor.Receipts[i].Receipt.LineItems[j].LineTotal))
		}
	}
}

func TestFetchReceipts_SendsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(`{"receipts": []}`))
	}))
	defer srv.Close()

	page, err := newClient(t, srv, false).FetchReceipts(context.Background(), time.Now(), time.Now(), "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Receipts)
	assert.Empty(t, page.NextCursor)
}

func TestFetchReceipts_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED"}]}`))
	}))
	defer srv.Close()

	c := loyverse.NewClient(loyverse.Config{BaseURL: srv.URL, MaxRetries: 3, RetryDelay: time.Millisecond})
	_, err := c.FetchReceipts(context.Background(), time.Now(), time.Now(), "")

	var apiErr *loyverse.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchReceipts_RetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"receipts": []}`))
	}))
	defer srv.Close()

	c := loyverse.NewClient(loyverse.Config{BaseURL: srv.URL, MaxRetries: 2, RetryDelay: time.Millisecond})
	_, err := c.FetchReceipts(context.Background(), time.Now(), time.Now(), "")

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchReceipts_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv, false).FetchReceipts(context.Background(), time.Now(), time.Now(), "")
	assert.Error(t, err)
}
