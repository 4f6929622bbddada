package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DemoUserID is the identity the recommendation service is queried for.
const DemoUserID = "USR001"

// DemoUser returns the fixed demo identity. The recent deposit is dated one
// day before now.
func DemoUser(now time.Time) User {
	return User{
		Name:           "Oluwasegun Lawrence",
		Age:            30,
		Occupation:     "SME Owner",
		IncomeBracket:  "Middle Income (₦50,000 - ₦200,000)",
		AccountBalance: decimal.NewFromInt(1_200_000),
		RecentTransaction: RecentTransaction{
			Amount:    decimal.NewFromInt(15_000),
			Type:      KindDeposit,
			Timestamp: now.Add(-24 * time.Hour).UTC(),
		},
		MonthlyIncome: decimal.NewFromInt(850_000),
		Demographics: Demographics{
			Nationality: "Nigerian",
			Gender:      "Male",
			Language:    "English",
		},
	}
}

// FlexibleSavings returns the recommendation behind the banner and the modal.
func FlexibleSavings(user User) Recommendation {
	return Recommendation{
		ID:          "flexible-savings-001",
		Title:       "Flexible Savings Plan",
		Description: "Save more with our Flexible Savings Plan. Get high interest on your deposits with the flexibility to withdraw when needed.",
		Context: fmt.Sprintf("Based on your recent deposit of ₦%s, we recommend starting a savings plan to maximize your returns.",
			humanize.Comma(user.RecentTransaction.Amount.IntPart())),
		MinimumAmount: decimal.NewFromInt(5_000),
		Benefits: []string{
			"Competitive 12% annual interest rate",
			"No lock-in period - withdraw anytime",
			"Zero maintenance fees",
			"Automatic interest calculations",
			"Mobile-first banking experience",
		},
	}
}

// DemoHistory returns the static transaction history.
func DemoHistory() []HistoryEntry {
	return []HistoryEntry{
		{ID: "1", Type: KindDeposit, Amount: decimal.NewFromInt(15_000), Description: "Bank Transfer", Date: "2024-01-15", Time: "14:30", Status: "completed"},
		{ID: "2", Type: KindSavings, Amount: decimal.NewFromInt(5_000), Description: "Flexible Savings Plan", Date: "2024-01-15", Time: "15:45", Status: "completed"},
		{ID: "3", Type: KindWithdrawal, Amount: decimal.NewFromInt(2_500), Description: "ATM Withdrawal", Date: "2024-01-14", Time: "10:15", Status: "completed"},
		{ID: "4", Type: KindDeposit, Amount: decimal.NewFromInt(25_000), Description: "Salary Credit", Date: "2024-01-10", Time: "09:00", Status: "completed"},
	}
}

// DemoNotifications returns the static notification list.
func DemoNotifications() []Notification {
	return []Notification{
		{ID: "1", Type: "success", Title: "Savings Plan Activated", Message: "Your Flexible Savings Plan is now active and earning 12% interest.", Age: "2 hours ago"},
		{ID: "2", Type: "info", Title: "Monthly Statement Ready", Message: "Your January statement is now available for download.", Age: "1 day ago"},
		{ID: "3", Type: "alert", Title: "Goal Reminder", Message: "You're 10% towards your ₦50,000 savings goal. Keep it up!", Age: "2 days ago", Read: true},
		{ID: "4", Type: "warning", Title: "Spending Alert", Message: "You've spent 75% of your monthly budget on dining.", Age: "3 days ago", Read: true},
	}
}

// SimulateTransaction returns a successful result for plan. A zero amount is
// replaced by a random multiple of ₦1,000 between the plan minimum and ten
// times the minimum.
func SimulateTransaction(plan Recommendation, amount decimal.Decimal) TransactionResult {
	if amount.IsZero() {
		minimum := plan.MinimumAmount.IntPart()
		if minimum < 1_000 {
			minimum = 1_000
		}
		steps := minimum * 9 / 1_000
		amount = decimal.NewFromInt(minimum + rand.Int63n(steps+1)*1_000)
	}
	return TransactionResult{
		Success:  true,
		Message:  "Transaction Successful!",
		Amount:   amount,
		PlanName: plan.Title,
	}
}
