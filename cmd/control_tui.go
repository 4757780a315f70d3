// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

// Focus states
const (
	focusActionList = iota
	focusArgInput
)

// controlAction is one command the TUI can send
type controlAction struct {
	name        string
	usage       string
	placeholder string
	build       func(args []string) (*gourd.Packet, error)
}

// Implement list.Item interface
func (a controlAction) Title() string       { return a.name }
func (a controlAction) Description() string { return a.usage }
func (a controlAction) FilterValue() string { return a.name }

var controlActions = []controlAction{
	{
		name:        "Pulse",
		usage:       "strip index (wraps at 8)",
		placeholder: "0",
		build: func(args []string) (*gourd.Packet, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("want one strip index")
			}
			strip, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid strip %q", args[0])
			}
			return gourd.NewLedPulse(strip), nil
		},
	},
	{
		name:        "Effect",
		usage:       "off, solid, multi, pulses, fire or 0-4",
		placeholder: "fire",
		build: func(args []string) (*gourd.Packet, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("want one effect")
			}
			id, err := parseEffect(args[0])
			if err != nil {
				return nil, err
			}
			return gourd.NewLedEffect(id), nil
		},
	},
	{
		name:        "Button LED",
		usage:       "id r g b [brightness]",
		placeholder: "0 255 0 0",
		build: func(args []string) (*gourd.Packet, error) {
			if len(args) != 4 && len(args) != 5 {
				return nil, fmt.Errorf("want id r g b [brightness]")
			}
			v := make([]uint8, len(args))
			for i, a := range args {
				b, err := parseByte(a)
				if err != nil {
					return nil, err
				}
				v[i] = b
			}
			if len(v) == 5 {
				return gourd.NewButtonLedWithBrightness(v[0], v[4], v[1], v[2], v[3]), nil
			}
			return gourd.NewButtonLed(v[0], v[1], v[2], v[3]), nil
		},
	},
	{
		name:        "Button press",
		usage:       "button [0 = release]",
		placeholder: "3",
		build: func(args []string) (*gourd.Packet, error) {
			if len(args) != 1 && len(args) != 2 {
				return nil, fmt.Errorf("want button [state]")
			}
			id, err := parseByte(args[0])
			if err != nil {
				return nil, err
			}
			pressed := len(args) == 1 || args[1] != "0"
			return gourd.NewButtonPress(id, pressed), nil
		},
	},
}

// buildControlPacket parses the argument field for action
func buildControlPacket(action controlAction, input string) (*gourd.Packet, error) {
	args := strings.Fields(input)
	if len(args) == 0 && action.placeholder != "" {
		args = strings.Fields(action.placeholder)
	}
	return action.build(args)
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	connMgr  *connectionManager
	connInfo string

	actions  list.Model
	argInput textinput.Model
	focus    int

	stats  *gourd.Statistics
	peer   peerState
	events eventLog
	sent   int

	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlBatchMsg struct {
	frames []gourd.Frame
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string) controlModel {
	ti := textinput.New()
	ti.Placeholder = controlActions[0].placeholder
	ti.CharLimit = 32
	ti.Width = 24

	items := make([]list.Item, len(controlActions))
	for i, a := range controlActions {
		items[i] = a
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	actions := list.New(items, delegate, 34, 12)
	actions.Title = "Commands"
	actions.SetShowStatusBar(false)
	actions.SetShowHelp(false)
	actions.SetFilteringEnabled(false)

	return controlModel{
		connMgr:  connMgr,
		connInfo: connInfo,
		actions:  actions,
		argInput: ti,
		focus:    focusActionList,
		stats:    gourd.NewStatistics(),
		events:   eventLog{max: 100},
		width:    80,
		height:   24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return tickCmd()
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.actions.SetHeight(max(6, m.height-12))

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case controlBatchMsg:
		for _, f := range msg.frames {
			recordFrame(f, m.stats, &m.peer, &m.events, false)
		}

	case connectionLostMsg:
		m.connectionLost = true
		m.events.add("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.peer = peerState{}
		m.events.add("Reconnected", false)
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.focus == focusActionList {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab", "shift+tab":
		m.cycleFocus()
		return m, nil

	case "enter":
		m.sendSelected()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusArgInput {
		m.argInput, cmd = m.argInput.Update(msg)
		return m, cmd
	}
	m.actions, cmd = m.actions.Update(msg)
	if a, ok := m.actions.SelectedItem().(controlAction); ok {
		m.argInput.Placeholder = a.placeholder
	}
	return m, cmd
}

func (m *controlModel) cycleFocus() {
	if m.focus == focusActionList {
		m.focus = focusArgInput
		m.argInput.Focus()
		return
	}
	m.focus = focusActionList
	m.argInput.Blur()
}

func (m *controlModel) sendSelected() {
	if m.connectionLost {
		m.events.add("Cannot send command: connection lost", true)
		return
	}
	action, ok := m.actions.SelectedItem().(controlAction)
	if !ok {
		return
	}

	p, err := buildControlPacket(action, m.argInput.Value())
	if err != nil {
		m.events.add(fmt.Sprintf("%s: %v", action.name, err), true)
		return
	}
	if err := m.connMgr.send(p); err != nil {
		m.events.add(fmt.Sprintf("Send failed: %v", err), true)
		return
	}
	m.sent++
	m.events.add(fmt.Sprintf("Sent %s %s", gourd.FormatCommand(p.Command()), strings.TrimSpace(gourd.FormatPayload(p))), false)
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	st := newStyles()

	var s strings.Builder
	s.WriteString(st.title.Render("LANTERN - CONTROL"))
	s.WriteString("\n")
	status := st.header.Render(m.connInfo)
	if m.connectionLost {
		status = st.err.Render("Connection lost - reconnecting...")
	}
	s.WriteString(status)
	s.WriteString(st.header.Render(" | Tab: switch focus | Enter: send | q: quit"))
	s.WriteString("\n\n")

	listBox, inputBox := st.focusedBox, st.box
	if m.focus == focusArgInput {
		listBox, inputBox = st.box, st.focusedBox
	}

	left := listBox.Render(m.actions.View())

	var args strings.Builder
	args.WriteString(st.label.Render("Arguments:"))
	args.WriteString("\n")
	args.WriteString(m.argInput.View())
	if a, ok := m.actions.SelectedItem().(controlAction); ok {
		args.WriteString("\n")
		args.WriteString(st.header.Render(a.usage))
	}
	args.WriteString(fmt.Sprintf("\n%s %s", st.label.Render("Sent:"), st.value.Render(strconv.Itoa(m.sent))))

	right := lipgloss.JoinVertical(lipgloss.Left,
		inputBox.Render(args.String()),
		renderPeer(m.peer, m.connectionLost, st),
		renderStats(m.stats, st),
	)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	s.WriteString("\n")

	s.WriteString(renderEvents(m.events, m.height-lipgloss.Height(s.String())-3, m.width-4, st))
	return s.String()
}
