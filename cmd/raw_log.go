// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	rawLogCapture string
	rawLogStats   bool
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display raw packet log in human-readable format",
	Long: `Continuously decode and display Gourd packets as they arrive.

Each 35-byte block is shown with its timestamp, command name and decoded
payload. Blocks that fail the checksum are printed as raw hex. With
--capture every block, valid or not, is also recorded to a CBOR file that
replay can send again.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().StringVar(&rawLogCapture, "capture", "", "Record received blocks to this file")
	rawLogCmd.Flags().BoolVar(&rawLogStats, "stats", true, "Print link statistics on exit")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	link, conn, connInfo, err := openLink(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var capture *gourd.CaptureWriter
	if rawLogCapture != "" {
		f, err := os.Create(rawLogCapture)
		if err != nil {
			return fmt.Errorf("create capture: %w", err)
		}
		defer f.Close()
		capture = gourd.NewCaptureWriter(f)
	}

	fmt.Printf("Lantern - Raw Packet Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	if capture != nil {
		fmt.Printf("Capture: %s\n", rawLogCapture)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	defer func() {
		if rawLogStats {
			fmt.Print("\n", link.Statistics())
		}
	}()

	for {
		frame, err := link.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, gourd.ErrLinkClosed) {
				log.Info().Msg("connection closed")
				return nil
			}
			return err
		}

		if capture != nil {
			if err := capture.Write(frame.Raw); err != nil {
				return fmt.Errorf("capture: %w", err)
			}
		}

		if frame.Err != nil {
			fmt.Printf("[ERROR] %v\n  %s\n", frame.Err, gourd.FormatRaw(frame.Raw))
			continue
		}
		fmt.Print(gourd.FormatPacket(frame.Packet))
	}
}
