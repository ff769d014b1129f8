package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Underline(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	// Tab styles
	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Margin(0, 1)

	ActiveTabStyle = TabStyle.
			Foreground(lipgloss.Color("36")).
			Bold(true).
			Underline(true)

	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("241"))

	// Data styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Align(lipgloss.Left)

	TableCellStyle = lipgloss.NewStyle().
			Align(lipgloss.Left)

	AltRowStyle = TableCellStyle.
			Foreground(lipgloss.Color("250"))

	SelectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("230"))

	// Scrolling
	ScrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Italic(true)

	ScrollInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)
