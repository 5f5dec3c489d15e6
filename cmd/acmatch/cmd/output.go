package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/domain/render"
	"github.com/corey/acmatch/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// palette is either the ANSI colors or all-empty strings.
type palette struct {
	reset, bold, file, pattern, offset, dim string
}

func newPalette(color bool) palette {
	if !color {
		return palette{}
	}
	return palette{
		reset:   colorReset,
		bold:    colorBold,
		file:    colorMagenta,
		pattern: colorGreen,
		offset:  colorCyan,
		dim:     colorGray,
	}
}

// formatHit formats one occurrence grep-style:
//
//	[file:]pattern<TAB>start<TAB>end
//
// oneBased only changes the printed offsets, see render.Offsets.
func formatHit(p palette, file string, h ports.Hit, oneBased bool) string {
	start, end := render.Offsets(h.Start, h.End, oneBased)
	var sb strings.Builder
	if file != "" {
		fmt.Fprintf(&sb, "%s%s%s%s:%s", p.file, file, p.reset, p.dim, p.reset)
	}
	fmt.Fprintf(&sb, "%s%s%s\t%s%d%s\t%s%d%s\n",
		p.pattern, h.Pattern, p.reset,
		p.offset, start, p.reset,
		p.offset, end, p.reset)
	return sb.String()
}

// formatCount formats a per-input match count.
func formatCount(p palette, file string, n int) string {
	if file == "" {
		return fmt.Sprintf("%d\n", n)
	}
	return fmt.Sprintf("%s%s%s%s:%s%d\n", p.file, file, p.reset, p.dim, p.reset, n)
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ acmatch daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:    %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Source:    %s\n", h.Source))
	sb.WriteString(fmt.Sprintf("  Patterns:  %d\n", h.PatternCount))
	sb.WriteString(fmt.Sprintf("  Nodes:     %d\n", h.NodeCount))
	sb.WriteString(fmt.Sprintf("  Reloads:   %d\n", h.Reloads))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	return sb.String()
}

// formatSet formats a stored set for `set show`.
func formatSet(set *ports.PatternSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %d patterns", colorBold, set.Name, colorReset, len(set.Patterns)))
	if set.AllowEmpty {
		sb.WriteString(fmt.Sprintf(" │ %sallow-empty%s", colorYellow, colorReset))
	}
	sb.WriteString("\n")
	for i, pat := range set.Patterns {
		sb.WriteString(fmt.Sprintf("  %s%4d%s  %q\n", colorGray, i, colorReset, pat))
	}
	return sb.String()
}
