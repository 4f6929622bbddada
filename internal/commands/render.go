package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/omnis-dev/omnis/internal/model"
)

const cardWidth = 64

var themeColors = map[model.Theme]lipgloss.Color{
	model.ThemeEmerald: lipgloss.Color("#10B981"),
	model.ThemeBlue:    lipgloss.Color("#3B82F6"),
	model.ThemeIndigo:  lipgloss.Color("#6366F1"),
	model.ThemeAmber:   lipgloss.Color("#F59E0B"),
	model.ThemeSlate:   lipgloss.Color("#64748B"),
	model.ThemePurple:  lipgloss.Color("#A855F7"),
}

// isTerminal reports whether w is a terminal we can style for.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func renderCards(w io.Writer, cards []model.Card, styled bool) {
	for i, c := range cards {
		if styled {
			fmt.Fprintln(w, styledCard(c, i+1, len(cards)))
		} else {
			fmt.Fprint(w, plainCard(c, i+1, len(cards)))
		}
	}
}

func styledCard(c model.Card, n, total int) string {
	color, ok := themeColors[c.VisualTheme]
	if !ok {
		color = lipgloss.Color("#9CA3AF")
	}

	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	badgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(color).Padding(0, 1)
	bodyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Width(cardWidth - 4)
	ctaStyle := lipgloss.NewStyle().Foreground(color).Underline(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(c.Title), "  ", badgeStyle.Render(c.BadgeText))
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		bodyStyle.Render(c.Description),
		"",
		ctaStyle.Render(c.CallToActionLabel+" →"),
		dimStyle.Render(fmt.Sprintf("%d/%d  %s", n, total, c.ID)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(cardWidth).
		Render(body)
}

func plainCard(c model.Card, n, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s (%s)\n", n, total, c.Title, c.BadgeText)
	fmt.Fprintf(&b, "  %s\n", c.Description)
	fmt.Fprintf(&b, "  > %s  id=%s theme=%s\n\n", c.CallToActionLabel, c.ID, c.VisualTheme)
	return b.String()
}
