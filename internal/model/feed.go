package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product types reported in the investments feed, normalized by NormalizeProductType.
const (
	ProductTypeMutualFund   = "mutual fund"
	ProductTypeFixedDeposit = "fixed deposit"
)

// FeedTransactions summarizes the user's recent transaction activity.
type FeedTransactions struct {
	TotalTransactions int             `json:"totalTransactions"`
	MonthlyVolume     decimal.Decimal `json:"monthlyVolume"`
	LastTransaction   string          `json:"lastTransactionDate,omitempty"`
}

// AverageSize returns MonthlyVolume / TotalTransactions, or zero when there are none.
func (t FeedTransactions) AverageSize() decimal.Decimal {
	if t.TotalTransactions <= 0 {
		return decimal.Zero
	}
	return t.MonthlyVolume.Div(decimal.NewFromInt(int64(t.TotalTransactions)))
}

// Investment is one holding from the investments feed entry.
type Investment struct {
	InvestmentID     string          `json:"investmentId"`
	ProductType      string          `json:"productType"`
	ProductName      string          `json:"productName"`
	AmountInvested   decimal.Decimal `json:"amountInvested"`
	CurrentValue     decimal.Decimal `json:"currentValue"`
	Returns          decimal.Decimal `json:"returns"`
	PercentageReturn decimal.Decimal `json:"percentageReturn"`
	MaturityDate     *Date           `json:"maturityDate,omitempty"`
}

// IsType reports whether the investment's product type matches kind after normalization.
func (i Investment) IsType(kind string) bool {
	return NormalizeProductType(i.ProductType) == kind
}

// NormalizeProductType lowercases t and folds "_" and "-" into spaces,
// so "MUTUAL_FUND" and "mutual-fund" both become "mutual fund".
func NormalizeProductType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.NewReplacer("_", " ", "-", " ").Replace(t)
	return strings.Join(strings.Fields(t), " ")
}

// Balance is the user's current account balance.
type Balance struct {
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Currency       string          `json:"currency"`
	LastUpdated    string          `json:"lastUpdated"`
}

// ProductOffer is the savings product the service wants to offer.
type ProductOffer struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	InterestRate  decimal.Decimal `json:"interestRate"`
	MinimumAmount decimal.Decimal `json:"minimumAmount"`
}

// LoanApplication describes an approved or pending loan application.
type LoanApplication struct {
	ApplicationID   string          `json:"applicationId,omitempty"`
	LoanPurpose     string          `json:"loanPurpose"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	ApprovedAmount  decimal.Decimal `json:"approvedAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	TenureMonths    int             `json:"tenureMonths"`
	Status          string          `json:"status,omitempty"`
}

// Purpose returns the loan purpose with underscores replaced by spaces.
func (l LoanApplication) Purpose() string {
	return strings.ReplaceAll(l.LoanPurpose, "_", " ")
}

// Date is a calendar date that accepts both "2006-01-02" and RFC 3339 in JSON.
type Date struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("parsing date %q", s)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}
