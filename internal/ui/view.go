package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/format/table"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

const (
	descriptionLimit = 40
	descriptionKeep  = 45
	shortcutRows     = 10
	iconMarker       = "◆"
	itemIndicator    = "▌"
	footerHint       = "enter launch  tab complete  alt+1..0 quick launch  esc hide  ctrl+c quit"
)

// Rows above and below the result list: prompt, blank, blank, footer.
const chromeRows = 4

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	matches       map[int]bool
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model. A hidden launcher renders nothing.
func (m *Model) View() string {
	if !m.surf.Visible || m.quitting {
		return ""
	}
	lines := make([]styledLine, 0, m.results.Len()+chromeRows)
	lines = append(lines, styledLine{text: m.input.View(), raw: true}, styledLine{})
	rows := m.resultLines()
	if len(rows) == 0 && m.query != "" {
		lines = append(lines, styledLine{text: fmt.Sprintf("No matches for %q", m.query), style: styles.Info})
	}
	lines = append(lines, rows...)
	lines = append(lines, styledLine{}, m.statusLine())
	lines = applyWidth(lines, m.termWidth)
	return renderLines(lines)
}

func (m *Model) statusLine() styledLine {
	switch {
	case m.lastErr != "":
		return styledLine{text: "Error: " + m.lastErr, style: styles.Error}
	case !m.bus.Live():
		return styledLine{text: "backend unavailable", style: styles.Info}
	default:
		return styledLine{text: footerHint, style: styles.Footer}
	}
}

func (m *Model) resultLines() []styledLine {
	if m.results.Len() == 0 {
		return nil
	}
	maxItems := m.maxVisibleItems()
	m.results.EnsureCursorVisible(maxItems)
	start, end := 0, m.results.Len()
	if maxItems > 0 && end-start > maxItems {
		start = m.results.ViewportOffset
		end = start + maxItems
	}
	visible := m.results.Items[start:end]

	rows := make([][]string, len(visible))
	for i, item := range visible {
		rows[i] = []string{shortcutLabel(start + i), m.iconCell(item), item.Name, describe(item.Description)}
	}
	formatted := table.Format(rows, nil)
	widths := table.Widths(rows)
	nameOffset := len([]rune(itemIndicator+" ")) + widths[0] + 2 + widths[1] + 2

	lines := make([]styledLine, len(formatted))
	for i, text := range formatted {
		line := buildItemLine(text, start+i == m.results.Cursor)
		line.matches = matchPositions(m.query, visible[i].Name, nameOffset)
		lines[i] = line
	}
	return lines
}

func buildItemLine(label string, selected bool) styledLine {
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if selected {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	return styledLine{
		text:          itemIndicator + " " + label,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

func shortcutLabel(index int) string {
	if index >= shortcutRows {
		return " "
	}
	return fmt.Sprintf("%d", (index+1)%10)
}

func (m *Model) iconCell(item protocol.SearchResult) string {
	if m.icons == nil {
		return " "
	}
	for _, src := range []*protocol.IconSource{item.Icon, item.CategoryIcon} {
		if _, ok := m.icons.Resolve(src, m.iconTheme); ok {
			return iconMarker
		}
	}
	return " "
}

// describe shortens long descriptions the way the result list always has:
// anything over 40 cells keeps its first 45 and gains an ellipsis.
func describe(desc string) string {
	if runewidth.StringWidth(desc) <= descriptionLimit {
		return desc
	}
	return truncate.String(desc, descriptionKeep) + "..."
}

// matchPositions returns the rune positions, shifted by offset, of the name
// characters matched by query.
func matchPositions(query, name string, offset int) map[int]bool {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	found := fuzzy.Find(query, []string{name})
	if len(found) == 0 {
		return nil
	}
	runeAt := make(map[int]int, len(name))
	pos := 0
	for byteIdx := range name {
		runeAt[byteIdx] = pos
		pos++
	}
	out := make(map[int]bool, len(found[0].MatchedIndexes))
	for _, idx := range found[0].MatchedIndexes {
		if p, ok := runeAt[idx]; ok {
			out[offset+p] = true
		}
	}
	return out
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.termWidth = resize.Width
	m.termHeight = resize.Height
	m.input.Width = resize.Width - runewidth.StringWidth(m.input.Prompt) - 1
	m.results.EnsureCursorVisible(m.maxVisibleItems())
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.termHeight <= 0 {
		return -1
	}
	remain := m.termHeight - chromeRows
	if remain < 1 {
		return 1
	}
	return remain
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line.raw {
			out[i] = line.text
			continue
		}
		out[i] = renderLine(line)
	}
	return strings.Join(out, "\n")
}

// renderLine styles the prefix, matched runes and the rest of the line as
// separate runs.
func renderLine(line styledLine) string {
	runes := []rune(line.text)
	if len(runes) == 0 {
		return ""
	}
	var matchStyle *lipgloss.Style
	if len(line.matches) > 0 && styles.Match != nil {
		matched := *styles.Match
		if line.style != nil {
			matched = matched.Inherit(*line.style)
		}
		matchStyle = &matched
	}
	styleAt := func(pos int) *lipgloss.Style {
		if pos < line.highlightFrom && line.prefixStyle != nil {
			return line.prefixStyle
		}
		if matchStyle != nil && line.matches[pos] {
			return matchStyle
		}
		return line.style
	}
	var b strings.Builder
	runStart := 0
	current := styleAt(0)
	flush := func(end int) {
		segment := string(runes[runStart:end])
		if current != nil {
			segment = current.Render(segment)
		}
		b.WriteString(segment)
	}
	for pos := 1; pos < len(runes); pos++ {
		if next := styleAt(pos); next != current {
			flush(pos)
			runStart = pos
			current = next
		}
	}
	flush(len(runes))
	return b.String()
}

func truncateText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, width, "…")
}
