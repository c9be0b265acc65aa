// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     tui
// Description: Shared lipgloss palette for the CLI and the live preview
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSecondary = lipgloss.Color("#10B981")
	ColorAccent    = lipgloss.Color("#F59E0B")
	ColorError     = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorFg        = lipgloss.Color("#F9FAFB")
	ColorInfo      = lipgloss.Color("#06B6D4")
)

// Styles
var (
	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	// Box styles
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	FocusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	// Status styles
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(ColorFg).
			Padding(0, 1)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	// Tree node styles, one per node kind
	TextNodeStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ForNodeStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	EchoNodeStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	PositionStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// Tab styles
	TabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorPrimary).
			Bold(true).
			Underline(true)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// RenderTitle renders a title line
func RenderTitle(title string) string {
	return TitleStyle.Render(title)
}

// RenderError renders an error line
func RenderError(err string) string {
	return StatusErrorStyle.Render("error: " + err)
}

// RenderHelp renders a key help line
func RenderHelp(help string) string {
	return HelpStyle.Render(help)
}

// RenderTree colours the lines produced by ast.Dump by node kind. The
// trailing "(line:col)" position is highlighted separately.
func RenderTree(dump string) string {
	lines := strings.Split(strings.TrimRight(dump, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]

		body, pos := trimmed, ""
		if j := strings.LastIndex(trimmed, " ("); j >= 0 && strings.HasSuffix(trimmed, ")") {
			body, pos = trimmed[:j], trimmed[j:]
		}

		style := lipgloss.NewStyle()
		switch {
		case strings.HasPrefix(body, "Text"):
			style = TextNodeStyle
		case strings.HasPrefix(body, "For"):
			style = ForNodeStyle
		case strings.HasPrefix(body, "Echo"):
			style = EchoNodeStyle
		case strings.HasPrefix(body, "Document"):
			style = TitleStyle
		}
		lines[i] = indent + style.Render(body) + PositionStyle.Render(pos)
	}
	return strings.Join(lines, "\n")
}
