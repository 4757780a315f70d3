// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	buttonLedBrightness int
	buttonReleased      bool
)

var pulseCmd = &cobra.Command{
	Use:   "pulse <strip>",
	Short: "Send LED_PULSE to start a pulse on a strip",
	Long: `Send one LED_PULSE packet. The strip index wraps modulo 8, so a global
button index addresses the matching strip on every board.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strip, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid strip %q: %w", args[0], err)
		}
		return sendPacket(gourd.NewLedPulse(strip))
	},
}

var effectCmd = &cobra.Command{
	Use:   "effect <id|name>",
	Short: "Send LED_EFFECT to change the background effect",
	Long: `Send one LED_EFFECT packet.

Effects:
  0 off
  1 solid   (breathing, single colour)
  2 multi   (breathing, colour ratio)
  3 pulses  (pulses only)
  4 fire`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEffect(args[0])
		if err != nil {
			return err
		}
		return sendPacket(gourd.NewLedEffect(id))
	},
}

var buttonLedCmd = &cobra.Command{
	Use:   "button-led <id> <r> <g> <b>",
	Short: "Send BUTTON_LED to set a button light",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals := make([]uint8, len(args))
		for i, a := range args {
			v, err := parseByte(a)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		if vals[0] >= gourd.ButtonLightCount {
			return fmt.Errorf("button light %d out of range (0-%d)", vals[0], gourd.ButtonLightCount-1)
		}
		if buttonLedBrightness >= 0 {
			if buttonLedBrightness > 0xFF {
				return fmt.Errorf("brightness %d out of range (0-255)", buttonLedBrightness)
			}
			return sendPacket(gourd.NewButtonLedWithBrightness(vals[0], uint8(buttonLedBrightness), vals[1], vals[2], vals[3]))
		}
		return sendPacket(gourd.NewButtonLed(vals[0], vals[1], vals[2], vals[3]))
	},
}

var buttonCmd = &cobra.Command{
	Use:   "button <id>",
	Short: "Send BUTTON_PRESS as the input board would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseByte(args[0])
		if err != nil {
			return err
		}
		return sendPacket(gourd.NewButtonPress(id, !buttonReleased))
	},
}

func init() {
	rootCmd.AddCommand(pulseCmd, effectCmd, buttonLedCmd, buttonCmd)
	buttonLedCmd.Flags().IntVar(&buttonLedBrightness, "brightness", -1, "Brightness byte (0-255); omitted sends the short form")
	buttonCmd.Flags().BoolVar(&buttonReleased, "released", false, "Send a release instead of a press")
}

func sendPacket(p *gourd.Packet) error {
	conn, _, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := gourd.NewLink(conn).SendPacket(p); err != nil {
		return err
	}
	fmt.Print("Sent ", gourd.FormatPacket(p))
	return nil
}

var effectNames = map[string]uint8{
	"off":    gourd.EffectOff,
	"solid":  gourd.EffectBreathingSolid,
	"multi":  gourd.EffectBreathingMulti,
	"pulses": gourd.EffectPulsesOnly,
	"fire":   gourd.EffectFire,
}

// parseEffect accepts an effect number or name. Unknown numbers are
// allowed through since the boards ignore them.
func parseEffect(s string) (uint8, error) {
	if id, ok := effectNames[strings.ToLower(s)]; ok {
		return id, nil
	}
	id, err := parseByte(s)
	if err != nil {
		return 0, fmt.Errorf("unknown effect %q", s)
	}
	return id, nil
}

// parseByte accepts decimal or 0x-prefixed hex in 0-255
func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q: want 0-255", s)
	}
	return uint8(v), nil
}
