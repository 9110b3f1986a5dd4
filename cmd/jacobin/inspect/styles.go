/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package inspect

import "github.com/charmbracelet/lipgloss"

var (
	infoColor    = lipgloss.Color("#4682B4")
	goodColor    = lipgloss.Color("#228B22")
	warningColor = lipgloss.Color("#FF8800")
	mutedColor   = lipgloss.Color("#888888")

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(infoColor).
			Padding(0, 1).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	goodStyle  = lipgloss.NewStyle().Foreground(goodColor)
	warnStyle  = lipgloss.NewStyle().Foreground(warningColor)
)
