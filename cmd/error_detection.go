// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze corrupt and malformed packets",
	Long: `Track dropped blocks, malformed payloads and link health with statistics.

This command checks each 35-byte block and reports:
  - Checksum failures and invalid lengths (the block is dropped)
  - Payloads the boards would misread (short payloads, strip or light
    indices out of range, unknown effects and opcodes)
  - Heartbeats, so a stalled board shows up
  - Statistics and trends (packet rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid packets too.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all packets (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds, text mode)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	if err := checkStatsInterval(statsInterval); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	link, conn, connInfo, err := openLink(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runTUIMode(ctx, link, connInfo)
	}
	return runTextMode(ctx, link, connInfo)
}

func checkStatsInterval(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("--stats-interval must be positive, got %d", seconds)
	}
	return nil
}

// receiveFrames delivers frames until the link stops; the final error is
// sent on the returned error channel
func receiveFrames(ctx context.Context, link *gourd.Link) (<-chan gourd.Frame, <-chan error) {
	frames := make(chan gourd.Frame, 16)
	errc := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			f, err := link.Receive(ctx)
			if err != nil {
				errc <- err
				return
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return frames, errc
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(ctx context.Context, link *gourd.Link, connInfo string) error {
	p := tea.NewProgram(initialMonitorModel(connInfo, showAll), tea.WithAltScreen(), tea.WithContext(ctx))

	frames, errc := receiveFrames(ctx, link)
	go func() {
		for f := range frames {
			p.Send(frameMsg{frame: f})
		}
		p.Send(linkClosedMsg{err: <-errc})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runTextMode prints errors as they happen and statistics periodically
func runTextMode(ctx context.Context, link *gourd.Link, connInfo string) error {
	fmt.Printf("Lantern - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All packets\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := gourd.NewStatistics()
	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	frames, errc := receiveFrames(ctx, link)
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				fmt.Println()
				fmt.Print(stats.String())
				if err := <-errc; ctx.Err() == nil {
					return fmt.Errorf("connection: %w", err)
				}
				return nil
			}
			printFrame(f, stats)

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

func printFrame(f gourd.Frame, stats *gourd.Statistics) {
	timestamp := time.Now().Format("15:04:05.000")
	if f.Err != nil {
		stats.Update(nil, f.Err, nil)
		fmt.Printf("[%s] \033[1;31mDROPPED:\033[0m %v\n", timestamp, f.Err)
		fmt.Printf("  %s\n\n", gourd.FormatRaw(f.Raw))
		return
	}

	p := f.Packet
	errs := gourd.ValidatePacket(p)
	stats.Update(p, nil, errs)

	switch {
	case len(errs) > 0:
		printValidationErrors(p, errs)
	case p.Command() == gourd.CmdHeartbeat && showAll:
		uptime, _ := gourd.HeartbeatUptime(p)
		fmt.Printf("[%s] \033[1;32mHEARTBEAT:\033[0m board uptime: %s\n\n", timestamp, formatUptime(uint64(uptime)))
	case showAll:
		fmt.Print(gourd.FormatPacket(p))
	}
}

// printValidationErrors prints validation errors for a packet
func printValidationErrors(p *gourd.Packet, errs []gourd.ValidationError) {
	timestamp := p.Timestamp().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s (0x%02X)\n", timestamp, gourd.FormatCommand(p.Command()), p.Command())
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range errs {
		switch err.Type {
		case gourd.AnomalyLengthMismatch:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
		case gourd.AnomalyInvalidValue, gourd.AnomalyUnknownCommand:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}
	fmt.Printf("  %s\n", gourd.FormatRaw(gourd.EncodePacket(p)))
	fmt.Printf("  >>> PACKET REJECTED <<<\n\n")
}
