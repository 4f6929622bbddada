package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a movement on the demo account.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindSavings    TransactionKind = "savings"
)

// RecentTransaction is the single latest movement shown on the profile card.
type RecentTransaction struct {
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionKind `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// Demographics holds display-only profile attributes.
type Demographics struct {
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	Language    string `json:"language"`
}

// User is the fixed demo identity.
type User struct {
	Name              string            `json:"name"`
	Age               int               `json:"age"`
	Occupation        string            `json:"occupation"`
	IncomeBracket     string            `json:"incomeBracket"`
	AccountBalance    decimal.Decimal   `json:"accountBalance"`
	RecentTransaction RecentTransaction `json:"recentTransaction"`
	MonthlyIncome     decimal.Decimal   `json:"monthlyIncome"`
	Demographics      Demographics      `json:"demographics"`
}

// Recommendation is the detailed offer shown in the recommendation modal.
type Recommendation struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Context       string          `json:"context"`
	MinimumAmount decimal.Decimal `json:"minimumAmount"`
	Benefits      []string        `json:"benefits"`
}

// TransactionResult is the outcome of a simulated transaction.
type TransactionResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Amount   decimal.Decimal `json:"amount"`
	PlanName string          `json:"planName"`
}

// HistoryEntry is one row of the transaction history list.
type HistoryEntry struct {
	ID          string          `json:"id"`
	Type        TransactionKind `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Status      string          `json:"status"`
}

// Notification is one entry in the notifications tab.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Age     string `json:"time"`
	Read    bool   `json:"read"`
}
