package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vitalvas/edgemux/mux"
)

var (
	methodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)
	patternStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).PaddingLeft(1)
	cacheStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingLeft(1)
)

// routeTable renders the registered routes, one per line, in match order.
func routeTable(r *mux.Router) string {
	var lines []string

	_ = r.Walk(func(rt *mux.Route) error {
		line := methodStyle.Render(rt.Method()) + patternStyle.Render(rt.Pattern())
		if secs, ok := rt.GetCacheTime(); ok {
			line += cacheStyle.Render("cache " + strconv.Itoa(secs) + "s")
		}

		lines = append(lines, line)
		return nil
	})

	return strings.Join(lines, "\n")
}
