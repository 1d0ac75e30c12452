// Package ui provides the colour theme shared by the CLI presentation code:
// ANSI escape helpers for inline text and lipgloss styles for tables.
// Colours are disabled when NO_COLOR is set or --no-color is passed.
package ui
