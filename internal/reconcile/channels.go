package reconcile

import (
	"strings"

	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type Channel string

const (
	ChannelCash  Channel = "cash"
	ChannelQR    Channel = "qr"
	ChannelGrab  Channel = "grab"
	ChannelOther Channel = "other"
)

// ChannelMatcher buckets POS payment labels into the channels staff report.
// Labels are matched case-insensitively by substring, in rule order.
type ChannelMatcher struct {
	Rules []ChannelRule
}

type ChannelRule struct {
	Channel  Channel
	Keywords []string
}

func DefaultChannelMatcher() ChannelMatcher {
	return ChannelMatcher{Rules: []ChannelRule{
		{Channel: ChannelGrab, Keywords: []string{"grab"}},
		{Channel: ChannelQR, Keywords: []string{"qr", "scan", "promptpay"}},
		{Channel: ChannelCash, Keywords: []string{"cash"}},
	}}
}

func (m ChannelMatcher) Match(label string) Channel {
	l := strings.ToLower(label)
	for _, rule := range m.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(l, kw) {
				return rule.Channel
			}
		}
	}
	return ChannelOther
}

// Totals sums the payment breakdown per channel.
func (m ChannelMatcher) Totals(breakdown map[string]domain.PaymentBucket) map[Channel]decimal.Decimal {
	totals := map[Channel]decimal.Decimal{
		ChannelCash:  decimal.Zero,
		ChannelQR:    decimal.Zero,
		ChannelGrab:  decimal.Zero,
		ChannelOther: decimal.Zero,
	}
	for label, bucket := range breakdown {
		ch := m.Match(label)
		totals[ch] = totals[ch].Add(bucket.Amount)
	}
	return totals
}
