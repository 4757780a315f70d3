// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// eventLog keeps the most recent entries
type eventLog struct {
	entries []logEntry
	max     int
}

func (l *eventLog) add(message string, isError bool) {
	l.entries = append(l.entries, logEntry{timestamp: time.Now(), message: message, isError: isError})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Styles shared by the monitor and control views
type tuiStyles struct {
	title, header, label, value, err, warning, box, focusedBox lipgloss.Style
}

func newStyles() tuiStyles {
	return tuiStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		focusedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1),
	}
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	plural := func(n uint64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

// peerState is what the monitor knows about the far board
type peerState struct {
	uptime   uint32
	seenAt   time.Time
	lastCmd  uint8
	haveBeat bool
}

// recordFrame folds one received frame into the view's own statistics, the
// peer state and the event log. The link keeps separate counters on the
// reader goroutine.
func recordFrame(f gourd.Frame, stats *gourd.Statistics, peer *peerState, events *eventLog, showAll bool) {
	if f.Err != nil {
		stats.Update(nil, f.Err, nil)
		events.add(fmt.Sprintf("DROPPED: %v", f.Err), true)
		return
	}

	p := f.Packet
	errs := gourd.ValidatePacket(p)
	stats.Update(p, nil, errs)
	name := gourd.FormatCommand(p.Command())
	peer.lastCmd = p.Command()
	if uptime, ok := gourd.HeartbeatUptime(p); ok {
		peer.uptime = uptime
		peer.seenAt = time.Now()
		peer.haveBeat = true
	}

	if len(errs) > 0 {
		for _, err := range errs {
			events.add(fmt.Sprintf("%s: %s", name, err.Message), true)
		}
		return
	}
	if showAll && p.Command() != gourd.CmdHeartbeat {
		events.add(fmt.Sprintf("%s %s", name, strings.TrimSpace(gourd.FormatPayload(p))), false)
	}
}

// Monitor TUI model
type monitorModel struct {
	connInfo string
	showAll  bool
	stats    *gourd.Statistics
	peer     peerState
	events   eventLog
	width    int
	height   int
	quitting bool
	closed   bool
}

// Messages
type tickMsg time.Time

type frameMsg struct {
	frame gourd.Frame
}

type linkClosedMsg struct {
	err error
}

func initialMonitorModel(connInfo string, showAll bool) monitorModel {
	return monitorModel{
		connInfo: connInfo,
		showAll:  showAll,
		stats:    gourd.NewStatistics(),
		events:   eventLog{max: 100},
		width:    80,
		height:   24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.events.add("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case frameMsg:
		recordFrame(msg.frame, m.stats, &m.peer, &m.events, m.showAll)

	case linkClosedMsg:
		m.closed = true
		m.events.add(fmt.Sprintf("Connection closed: %v", msg.err), true)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	st := newStyles()

	var s strings.Builder
	s.WriteString(st.title.Render("LANTERN - ERROR DETECTION"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All packets"
	}
	s.WriteString(st.header.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset | 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	s.WriteString(renderStats(m.stats, st))
	s.WriteString("\n\n")

	s.WriteString(renderPeer(m.peer, m.closed, st))
	s.WriteString("\n\n")

	s.WriteString(st.label.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(renderEvents(m.events, m.height-17, m.width-4, st))
	return s.String()
}

func renderStats(stats *gourd.Statistics, st tuiStyles) string {
	stats.CalculateRates()
	errors := stats.ErrorCount()
	var validPercent, errorPercent float64
	if stats.TotalPackets > 0 {
		validPercent = float64(stats.ValidPackets) * 100.0 / float64(stats.TotalPackets)
		errorPercent = float64(errors) * 100.0 / float64(stats.TotalPackets)
	}

	var c strings.Builder
	c.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		st.label.Render("Total:"), st.value.Render(fmt.Sprintf("%d", stats.TotalPackets)),
		st.label.Render("Valid:"), st.value.Render(fmt.Sprintf("%d (%.1f%%)", stats.ValidPackets, validPercent)),
		st.label.Render("Errors:"), st.err.Render(fmt.Sprintf("%d (%.1f%%)", errors, errorPercent)),
	))

	if stats.ChecksumErrors > 0 || stats.LengthErrors > 0 {
		c.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			st.label.Render("Checksum Errors:"), st.err.Render(fmt.Sprintf("%d", stats.ChecksumErrors)),
			st.label.Render("Length Errors:"), st.err.Render(fmt.Sprintf("%d", stats.LengthErrors)),
		))
	}
	if stats.MalformedPackets > 0 {
		c.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d)\n",
			st.label.Render("Malformed:"), st.warning.Render(fmt.Sprintf("%d", stats.MalformedPackets)),
			st.header.Render("length"), stats.LengthMismatches,
			st.header.Render("values"), stats.InvalidValues,
			st.header.Render("unknown"), stats.UnknownCommands,
		))
	}

	errRate := st.value.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
	if stats.ErrorRate > 0 {
		errRate = st.err.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
	}
	c.WriteString(fmt.Sprintf("%s %s   %s %s",
		st.label.Render("Packet Rate:"), st.value.Render(fmt.Sprintf("%.1f pkts/s", stats.PacketRate)),
		st.label.Render("Error Rate:"), errRate,
	))
	return st.box.Render(c.String())
}

func renderPeer(peer peerState, closed bool, st tuiStyles) string {
	var c strings.Builder
	switch {
	case closed:
		c.WriteString(st.err.Render("✗ Connection closed"))
	case !peer.haveBeat:
		c.WriteString(st.warning.Render("⏳ Waiting for heartbeat..."))
	default:
		ago := time.Since(peer.seenAt).Round(100 * time.Millisecond)
		line := st.value.Render("✓ Board up " + formatUptime(uint64(peer.uptime)))
		if ago > 2*gourd.HeartbeatIntervalMs*time.Millisecond {
			line = st.warning.Render("⚠ Last heartbeat " + ago.String() + " ago")
		}
		c.WriteString(line)
	}
	if peer.lastCmd != 0 {
		c.WriteString(fmt.Sprintf("\n%s %s", st.label.Render("Last command:"), gourd.FormatCommand(peer.lastCmd)))
	}
	return st.box.Render(c.String())
}

func renderEvents(events eventLog, height, width int, st tuiStyles) string {
	if height < 5 {
		height = 5
	}
	var c strings.Builder
	start := len(events.entries) - height
	if start < 0 {
		start = 0
	}

	if len(events.entries) == 0 {
		c.WriteString(st.header.Render("  (no events yet)"))
	}
	for _, e := range events.entries[start:] {
		ts := e.timestamp.Format("15:04:05.000")
		if e.isError {
			c.WriteString(fmt.Sprintf("%s %s\n", st.header.Render(ts), st.err.Render("✗ "+e.message)))
		} else {
			c.WriteString(fmt.Sprintf("%s %s\n", st.header.Render(ts), st.warning.Render("ℹ "+e.message)))
		}
	}
	if width < 20 {
		width = 20
	}
	return st.box.Width(width).Render(c.String())
}
