// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for driving the LED boards",
	Long: `Send commands to a Gourd board from an interactive terminal UI.

Features:
  - Pulses, effects, button lights and button presses
  - Board heartbeat and uptime
  - Link statistics
  - Event logging
  - Automatic reconnection on connection loss

Tab switches between the command list and the argument field. Enter sends
the selected command.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	link     *gourd.Link
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *connectionManager) getLink() *gourd.Link {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.link
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.link = gourd.NewLink(conn)
	cm.connInfo = connInfo
}

// send writes p on the current link; safe to call from the TUI goroutine
func (cm *connectionManager) send(p *gourd.Packet) error {
	link := cm.getLink()
	if link == nil {
		return fmt.Errorf("not connected")
	}
	return link.SendPacket(p)
}

func runControl(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	cm := &connectionManager{done: make(chan struct{})}
	cm.setConn(conn, connInfo)

	p := tea.NewProgram(initialControlModel(cm, connInfo), tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.readerLoop()

	_, err = p.Run()
	close(cm.done)
	cm.mu.RLock()
	cm.conn.Close()
	cm.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// readerLoop handles reading from connection with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		if cm.readFromConnection() {
			cm.p.Send(connectionLostMsg{})
			if !cm.reconnect() {
				return
			}
		}
	}
}

// readFromConnection pumps the current connection into the TUI in batches
// until it fails. Returns true if the connection was lost, false on shutdown.
func (cm *connectionManager) readFromConnection() bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-cm.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	cm.mu.RLock()
	conn, link := cm.conn, cm.link
	cm.mu.RUnlock()
	go link.Pump(ctx, conn)

	// Frames are batched so a busy link does not flood the TUI
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	frames, errc := receiveFrames(ctx, link)

	var batch controlBatchMsg
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				<-errc
				if len(batch.frames) > 0 {
					cm.p.Send(batch)
				}
				select {
				case <-cm.done:
					return false
				default:
					return true
				}
			}
			batch.frames = append(batch.frames, f)

		case <-ticker.C:
			if len(batch.frames) > 0 {
				cm.p.Send(batch)
				batch = controlBatchMsg{}
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() bool {
	cm.mu.RLock()
	if cm.conn != nil {
		cm.conn.Close()
	}
	cm.mu.RUnlock()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)
			cm.p.Send(reconnectedMsg{connInfo: connInfo})
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
