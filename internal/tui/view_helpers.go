package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrodrigc/campuseats-client/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		for _, line := range strings.Split(data, "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}

	return appStyle.Render(b.String())
}

// statusLabel renders a wire status with its display style.
func statusLabel(status models.OrderStatus) string {
	label := strings.ReplaceAll(string(status), "_", " ")

	var style lipgloss.Style
	switch status {
	case models.StatusPending, models.StatusPreparing:
		style = pendingStyle
	case models.StatusReady, models.StatusCompleted:
		style = readyStyle
	case models.StatusCancelled:
		style = cancelStyle
	default:
		return label
	}
	return style.Render(label)
}

func orderLine(o models.Order) string {
	who := o.StoreName
	if who == "" {
		who = o.BuyerName
	}
	id := o.Key()
	if o.Synthetic() {
		id = "···"
	}
	return fmt.Sprintf("#%-6s %-24s %8.2f  %s", id, fitText(who, 24), o.Total, statusLabel(o.Status))
}

// fitText truncates to max runes; byte slicing would split multibyte
// characters in names like "Cafetería".
func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
