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
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/internal/display"
	"github.com/Thermoquad/lantern/internal/engine"
	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	runDriver    string
	runEffect    int
	runHeartbeat bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the strip board animation engine",
	Long: `Render the background effect and pulses for a board of LED strips.

LED_PULSE and LED_EFFECT packets received on the connection drive the
animation. Without --port or --url the engine runs standalone, which is
useful with the terminal preview driver.

A HEARTBEAT is sent back at most once per second.`,
	RunE: runRun,
}

var eyesCmd = &cobra.Command{
	Use:   "eyes",
	Short: "Run the eyes ring board animation",
	Long: `Render the eyes layout: one breathing zone per eye plus the button lights.

BUTTON_PRESS packets mark an eye pressed or released and start a ripple
that brightens its neighbours. BUTTON_LED packets set the button lights.`,
	RunE: runEyes,
}

func init() {
	for _, c := range []*cobra.Command{runCmd, eyesCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVar(&runDriver, "driver", "", "Display driver override (nrz, term, none)")
		c.Flags().BoolVar(&runHeartbeat, "heartbeat", true, "Send HEARTBEAT packets")
	}
	runCmd.Flags().IntVar(&runEffect, "effect", -1, "Start effect override (0-4)")
}

// boardSession is what both board roles share: signal handling, the
// optional link and the display.
type boardSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	link   *gourd.Link
	conn   Connection
	disp   engine.Display
}

func openBoardSession(numPixels int) (*boardSession, error) {
	if runDriver != "" {
		cfg.Driver = runDriver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	s := &boardSession{}
	s.ctx, s.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if wsURL != "" || portName != "" {
		link, conn, info, err := openLink(s.ctx)
		if err != nil {
			s.cancel()
			return nil, err
		}
		s.link, s.conn = link, conn
		log.Info().Str("conn", info).Msg("connected")
	} else {
		log.Warn().Msg("no --port or --url; running standalone")
	}

	disp, err := display.Open(cfg, numPixels, os.Stdout, log.Logger.With().Str("component", "display").Logger())
	if err != nil {
		s.close()
		return nil, err
	}
	s.disp = disp
	return s, nil
}

func (s *boardSession) close() {
	s.cancel()
	if s.disp != nil {
		if err := s.disp.Close(); err != nil {
			log.Warn().Err(err).Msg("display close failed")
		}
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *boardSession) run(d *engine.Dispatcher, a engine.Animator) error {
	loop := &engine.Loop{
		Link:       s.link,
		Dispatcher: d,
		Animator:   a,
		Frame:      time.Second / time.Duration(cfg.FPS),
		Heartbeat:  runHeartbeat,
		Log:        log.Logger,
	}
	err := loop.Run(s.ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}

func runRun(cmd *cobra.Command, args []string) error {
	if runEffect >= 0 {
		if runEffect > 0xFF || !gourd.KnownEffect(uint8(runEffect)) {
			return fmt.Errorf("unknown effect %d", runEffect)
		}
		cfg.StartEffect = uint8(runEffect)
	}

	s, err := openBoardSession(cfg.Geometry.Strips * cfg.Geometry.LedsPerStrip)
	if err != nil {
		return err
	}
	defer s.close()

	engineLog := log.Logger.With().Str("component", "engine").Logger()
	e := engine.New(cfg, s.disp, engine.WithLogger(engineLog))
	log.Info().
		Int("strips", cfg.Geometry.Strips).
		Int("leds", cfg.Geometry.LedsPerStrip).
		Stringer("effect", e.Background().Mode()).
		Msg("strip engine running")

	return s.run(engine.NewEngineDispatcher(e, engineLog), e)
}

func runEyes(cmd *cobra.Command, args []string) error {
	total := cfg.Eyes.ButtonLights
	for _, n := range cfg.Eyes.LedCounts {
		total += n
	}

	s, err := openBoardSession(total)
	if err != nil {
		return err
	}
	defer s.close()

	eyesLog := log.Logger.With().Str("component", "eyes").Logger()
	e := engine.NewEyes(cfg, s.disp, engine.WithLogger(eyesLog))
	log.Info().Int("eyes", e.Count()).Int("pixels", total).Msg("eyes running")

	return s.run(engine.NewEyesDispatcher(e, eyesLog), e)
}
