package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/iudanet/garageboard/internal/models"
)

//go:generate moq -out searcher_mock.go . Searcher

// Searcher finds customers by phone number.
type Searcher interface {
	SearchCustomers(ctx context.Context, phone string) ([]models.Customer, error)
}

// MinPhoneDigits is the shortest input that is sent to the server.
const MinPhoneDigits = 3

// Customers is a debounced, superseding phone lookup. It is meant to be
// called on every keystroke; only the last call reaches a result.
type Customers struct {
	api      Searcher
	logger   *slog.Logger
	latest   Latest
	debounce time.Duration
}

// NewCustomers creates a phone lookup. A non-positive debounce searches
// immediately.
func NewCustomers(client Searcher, debounce time.Duration, logger *slog.Logger) *Customers {
	return &Customers{
		api:      client,
		logger:   logger,
		debounce: debounce,
	}
}

// ByPhone waits for the debounce period and searches for phone. Input
// with fewer than MinPhoneDigits digits cancels any pending lookup and
// returns no results.
func (c *Customers) ByPhone(ctx context.Context, phone string) ([]models.Customer, error) {
	phone = NormalizePhone(phone)
	if countDigits(phone) < MinPhoneDigits {
		c.latest.Cancel()
		return nil, nil
	}

	return Run(ctx, &c.latest, func(ctx context.Context) ([]models.Customer, error) {
		if c.debounce > 0 {
			timer := time.NewTimer(c.debounce)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		c.logger.Debug("Searching customers", "phone", phone)
		found, err := c.api.SearchCustomers(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("customer lookup failed: %w", err)
		}
		return found, nil
	})
}

// Cancel aborts a pending lookup.
func (c *Customers) Cancel() {
	c.latest.Cancel()
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
