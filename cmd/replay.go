// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	replaySpeed float64
	replayLoop  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Resend a raw_log capture with its original timing",
	Long: `Send every block recorded by raw_log --capture, spaced as it was received.

Blocks are written unchanged, so corrupt blocks in the capture reach the
board corrupt. --speed 2 plays twice as fast; --speed 0 sends back to back.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 = no delay)")
	replayCmd.Flags().BoolVar(&replayLoop, "loop", false, "Repeat until interrupted")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replaySpeed < 0 {
		return fmt.Errorf("--speed must not be negative")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	records, err := gourd.ReadCapture(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: capture is empty", args[0])
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	link := gourd.NewLink(conn)
	log.Info().Str("conn", connInfo).Int("records", len(records)).Float64("speed", replaySpeed).Msg("replaying")

	for {
		sent, err := replayRecords(ctx, records, replaySpeed, link.SendRaw)
		log.Info().Int("sent", sent).Msg("replay pass done")
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !replayLoop {
			return nil
		}
	}
}

// replayRecords sends each record at its offset divided by speed, measured
// from the first record. Returns how many were sent.
func replayRecords(ctx context.Context, records []gourd.CaptureRecord, speed float64, send func([]byte) error) (int, error) {
	start := time.Now()
	base := records[0].OffsetMs

	for i, rec := range records {
		if speed > 0 {
			offset := time.Duration(float64(rec.OffsetMs-base)/speed) * time.Millisecond
			if wait := time.Until(start.Add(offset)); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return i, ctx.Err()
				case <-timer.C:
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := send(rec.Raw); err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return len(records), nil
}
