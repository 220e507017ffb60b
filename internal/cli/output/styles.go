package output

import "github.com/charmbracelet/lipgloss"

// Styles is the lipgloss style set shared by all commands. Commands
// render inline fragments through these rather than hardcoding colors.
type Styles struct {
	Header        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
	Info          lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	ID            lipgloss.Style
	Path          lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Header:        lipgloss.NewStyle().Bold(true).Underline(true),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		ID:            lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Path:          lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	}
}
