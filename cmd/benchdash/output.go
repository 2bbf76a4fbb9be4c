package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"benchdash/internal/source"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinTypes() string {
	return strings.Join(source.Types, ", ")
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}
