package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#E0A100", Dark: "#F5C542"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	labelStyle = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	yesStyle   = lipgloss.NewStyle().Bold(true).Foreground(warning)
	noStyle    = lipgloss.NewStyle().Bold(true).Foreground(special)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(highlight).Padding(0, 1)
)

// Terminal renders auction views as a framed table.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal writes to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Render(view domain.AuctionView) {
	rows := []struct {
		label string
		value string
	}{
		{"Owner", valueStyle.Render(view.Owner)},
		{"Highest bidder", valueStyle.Render(view.HighestBidder)},
		{"Highest bid", valueStyle.Render(view.HighestBid)},
		{"Minimum bid", valueStyle.Render(view.MinimumBid)},
		{"Ended", flagValue(view.AuctionEnded)},
		{"Paused", flagValue(view.AuctionPaused)},
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render("Auction"))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r.label), r.value))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, boxStyle.Render(strings.Join(lines, "\n")))
}

func flagValue(v string) string {
	if v == "Yes" {
		return yesStyle.Render(v)
	}
	return noStyle.Render(v)
}
