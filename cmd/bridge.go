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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	bridgeTargets []string
	bridgeEyes    string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Forward button presses from the input board to the LED boards",
	Long: `Read BUTTON_PRESS packets from the input board (--port or --url) and send
an LED_PULSE for that button to every strip board given with --to.

The strip index wraps modulo 8 on each board. With --eyes the BUTTON_PRESS
packets, presses and releases, are also forwarded unchanged to the eyes
board.

The input board must speak binary Gourd packets. Stock input firmware that
prints "BUTTON_PRESS:<n>" text lines (n counted from 1) is not understood;
flash it with the packet sender first.

Example:
  lantern bridge -p /dev/ttyACM0 --to /dev/ttyACM1 --to /dev/ttyACM2`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringArrayVar(&bridgeTargets, "to", nil, "Serial port of a strip board (repeatable)")
	bridgeCmd.Flags().StringVar(&bridgeEyes, "eyes", "", "Serial port of the eyes board")
}

// buttonBridge turns button presses into pulses on every target board
type buttonBridge struct {
	targets []*gourd.Link
	eyes    *gourd.Link
	log     zerolog.Logger
}

// handle forwards one packet and returns how many boards it was sent to
func (b *buttonBridge) handle(p *gourd.Packet) int {
	if p.Command() != gourd.CmdButtonPress || p.Length() < 1 {
		return 0
	}
	button := p.PayloadByte(0)
	pressed := p.Length() < 2 || p.PayloadByte(1) != 0

	sent := 0
	if b.eyes != nil {
		if err := b.eyes.SendPacket(gourd.NewButtonPress(button, pressed)); err != nil {
			b.log.Warn().Err(err).Str("board", "eyes").Msg("forward failed")
		} else {
			sent++
		}
	}
	if !pressed {
		return sent
	}

	pulse := gourd.NewLedPulse(int(button))
	for i, t := range b.targets {
		if err := t.SendPacket(pulse); err != nil {
			b.log.Warn().Err(err).Int("board", i).Msg("forward failed")
			continue
		}
		sent++
	}
	b.log.Info().Uint8("button", button).Uint8("strip", pulse.PayloadByte(0)).Int("boards", sent).Msg("button pressed")
	return sent
}

func runBridge(cmd *cobra.Command, args []string) error {
	if len(bridgeTargets) == 0 && bridgeEyes == "" {
		return fmt.Errorf("at least one --to or --eyes board is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := &buttonBridge{log: log.Logger}
	var conns []Connection
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	open := func(port string) (*gourd.Link, error) {
		c, err := OpenSerialConnection(port, baudRate)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
		return gourd.NewLink(c), nil
	}
	for _, port := range bridgeTargets {
		l, err := open(port)
		if err != nil {
			return err
		}
		b.targets = append(b.targets, l)
	}
	if bridgeEyes != "" {
		l, err := open(bridgeEyes)
		if err != nil {
			return err
		}
		b.eyes = l
	}

	input, conn, connInfo, err := openLink(ctx)
	if err != nil {
		return err
	}
	conns = append(conns, conn)
	log.Info().Str("input", connInfo).Strs("targets", bridgeTargets).Str("eyes", bridgeEyes).Msg("bridge running")

	for {
		frame, err := input.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, gourd.ErrLinkClosed) {
				return fmt.Errorf("input board disconnected")
			}
			return err
		}
		if frame.Err != nil {
			continue
		}
		b.handle(frame.Packet)
	}
}
