package feed

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnis-dev/omnis/internal/id"
	"github.com/omnis-dev/omnis/internal/model"
)

const (
	// monthLength is the month used for months-to-maturity.
	monthLength = 30 * 24 * time.Hour
	// premiumUpgradeThreshold is the average transaction size above which
	// the premium account card is offered.
	premiumUpgradeThreshold = 10_000
)

// noMaturity stands in for a missing maturity date, so such deposits only
// win the nearest-maturity comparison when none has a date.
var noMaturity = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// Derive builds cards from parsed feed data. Order is fixed: premium savings,
// high performer, fixed deposit strategy, portfolio diversification, loan,
// premium upgrade. Callers index pagination by this order.
func Derive(data Data, now time.Time) []model.Card {
	symbol := currencySymbol("")
	if data.Balance != nil {
		symbol = currencySymbol(data.Balance.Currency)
	}

	var cards []model.Card

	if data.ProductOffered != nil && data.Balance != nil {
		cards = append(cards, premiumSavingsCard(*data.ProductOffered, *data.Balance, symbol))
	}

	if len(data.Investments) > 0 {
		if best, ok := bestMutualFund(data.Investments); ok {
			cards = append(cards, highPerformerCard(best, symbol))
		}
		if nearest, ok := nearestFixedDeposit(data.Investments); ok && nearest.MaturityDate != nil && !nearest.MaturityDate.IsZero() {
			cards = append(cards, fixedDepositCard(nearest, monthsUntil(nearest.MaturityDate.Time, now), symbol))
		}
		if total := totalValue(data.Investments); total.IsPositive() {
			cards = append(cards, diversificationCard(total, len(data.Investments), symbol))
		}
	}

	if data.ApplicationData != nil {
		cards = append(cards, loanCard(*data.ApplicationData, now, symbol))
	}

	if data.Transactions != nil && data.Balance != nil {
		avg := data.Transactions.AverageSize()
		if avg.GreaterThan(decimal.NewFromInt(premiumUpgradeThreshold)) {
			cards = append(cards, premiumUpgradeCard(*data.Transactions, avg, symbol))
		}
	}

	return cards
}

func premiumSavingsCard(offer model.ProductOffer, bal model.Balance, symbol string) model.Card {
	name := offer.ProductName
	if name == "" {
		name = "Premium Savings"
	}
	desc := fmt.Sprintf("Earn %s%% annual interest on your savings. With your current balance of %s, you can start with just %s.",
		percent(offer.InterestRate), money(symbol, bal.CurrentBalance), money(symbol, offer.MinimumAmount))
	if bal.CurrentBalance.IsPositive() && offer.MinimumAmount.IsPositive() {
		share := offer.MinimumAmount.Div(bal.CurrentBalance).Mul(decimal.NewFromInt(100))
		desc += fmt.Sprintf(" That's %s%% of your balance.", percent(share))
	}
	return model.Card{
		ID:                id.CardID("premium-savings", offer.ProductID),
		Title:             name,
		Description:       desc,
		CallToActionLabel: "Start Saving",
		VisualTheme:       model.ThemeEmerald,
		BadgeText:         fmt.Sprintf("%s%% p.a.", percent(offer.InterestRate)),
	}
}

// bestMutualFund returns the mutual fund with the highest percentage return.
// Ties keep the first one seen.
func bestMutualFund(invs []model.Investment) (model.Investment, bool) {
	var best model.Investment
	found := false
	for _, inv := range invs {
		if !inv.IsType(model.ProductTypeMutualFund) {
			continue
		}
		if !found || inv.PercentageReturn.GreaterThan(best.PercentageReturn) {
			best = inv
			found = true
		}
	}
	return best, found
}

func highPerformerCard(inv model.Investment, symbol string) model.Card {
	return model.Card{
		ID:    id.CardID("high-performer", inv.InvestmentID),
		Title: "High Performer: " + inv.ProductName,
		Description: fmt.Sprintf("Your %s is up %s%%, returning %s on %s invested. Consider topping up your best-performing fund.",
			inv.ProductName, percent(inv.PercentageReturn), money(symbol, inv.Returns), money(symbol, inv.AmountInvested)),
		CallToActionLabel: "Invest More",
		VisualTheme:       model.ThemeBlue,
		BadgeText:         fmt.Sprintf("+%s%% return", percent(inv.PercentageReturn)),
	}
}

// nearestFixedDeposit returns the fixed deposit maturing soonest. Ties keep
// the first one seen.
func nearestFixedDeposit(invs []model.Investment) (model.Investment, bool) {
	var nearest model.Investment
	var nearestAt time.Time
	found := false
	for _, inv := range invs {
		if !inv.IsType(model.ProductTypeFixedDeposit) {
			continue
		}
		at := noMaturity
		if inv.MaturityDate != nil && !inv.MaturityDate.IsZero() {
			at = inv.MaturityDate.Time
		}
		if !found || at.Before(nearestAt) {
			nearest, nearestAt, found = inv, at, true
		}
	}
	return nearest, found
}

// monthsUntil is ceil((maturity - now) / 30 days).
func monthsUntil(maturity, now time.Time) int {
	return int(math.Ceil(float64(maturity.Sub(now)) / float64(monthLength)))
}

func fixedDepositCard(inv model.Investment, months int, symbol string) model.Card {
	var when, badge string
	switch {
	case months <= 0:
		when, badge = "has matured", "Matured"
	case months == 1:
		when, badge = "matures in 1 month", "1 month left"
	default:
		when, badge = fmt.Sprintf("matures in %d months", months), fmt.Sprintf("%d months left", months)
	}
	return model.Card{
		ID:    id.CardID("fixed-deposit", inv.InvestmentID),
		Title: "Fixed Deposit Strategy",
		Description: fmt.Sprintf("Your %s worth %s %s. Plan ahead to roll it over or reinvest at the best available rate.",
			inv.ProductName, money(symbol, inv.CurrentValue), when),
		CallToActionLabel: "Plan Reinvestment",
		VisualTheme:       model.ThemeIndigo,
		BadgeText:         badge,
	}
}

func totalValue(invs []model.Investment) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invs {
		total = total.Add(inv.CurrentValue)
	}
	return total
}

func diversificationCard(total decimal.Decimal, count int, symbol string) model.Card {
	noun := "investments"
	if count == 1 {
		noun = "investment"
	}
	return model.Card{
		ID:    id.CardID("portfolio-diversification", ""),
		Title: "Diversify Your Portfolio",
		Description: fmt.Sprintf("Your portfolio holds %d %s worth %s. Spreading across more asset classes can balance risk and return.",
			count, noun, money(symbol, total)),
		CallToActionLabel: "Explore Options",
		VisualTheme:       model.ThemePurple,
		BadgeText:         fmt.Sprintf("%d %s", count, noun),
	}
}

// loanCard has no stable source identifier, so its ID is time based.
func loanCard(app model.LoanApplication, now time.Time, symbol string) model.Card {
	return model.Card{
		ID:    id.GeneratedID("loan", now),
		Title: "Your Loan Is Ready",
		Description: fmt.Sprintf("Your %s loan is approved for %s of the %s requested, at %s%% interest over %d months.",
			app.Purpose(), money(symbol, app.ApprovedAmount), money(symbol, app.RequestedAmount),
			percent(app.InterestRate), app.TenureMonths),
		CallToActionLabel: "Review Loan",
		VisualTheme:       model.ThemeSlate,
		BadgeText:         money(symbol, app.ApprovedAmount) + " approved",
	}
}

func premiumUpgradeCard(tx model.FeedTransactions, avg decimal.Decimal, symbol string) model.Card {
	return model.Card{
		ID:    id.CardID("premium-upgrade", ""),
		Title: "Upgrade to Premium",
		Description: fmt.Sprintf("You average %s per transaction across %d transactions this month. Premium gives you higher limits and lower fees.",
			money(symbol, avg.Round(0)), tx.TotalTransactions),
		CallToActionLabel: "Upgrade Now",
		VisualTheme:       model.ThemeAmber,
		BadgeText:         "Premium",
	}
}
