// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test connection by waiting for a valid Gourd packet",
	Long: `Wait for a valid Gourd packet on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any
35-byte block that passes the checksum. Blocks that fail are counted and
skipped. Boards send a HEARTBEAT every second, so a live board answers
well within the default timeout.

Exit codes:
  0 - Packet received before timeout
  1 - Timeout reached without receiving a valid packet
  2 - Connection error`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a packet")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(packetTestTimeout)*time.Second)
	defer cancel()

	link, conn, connInfo, err := openLink(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Lantern - Packet Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)
	fmt.Printf("Waiting for valid Gourd packet...\n\n")

	os.Exit(waitForPacket(ctx, link))
	return nil
}

// waitForPacket returns the packet_test exit code
func waitForPacket(ctx context.Context, link *gourd.Link) int {
	invalid := 0
	for {
		frame, err := link.Receive(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintf(os.Stderr, "TIMEOUT: No valid packet received within %d seconds\n", packetTestTimeout)
			return 1
		case err != nil:
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			return 2
		case frame.Err != nil:
			invalid++
			continue
		}

		if invalid > 0 {
			fmt.Printf("(skipped %d invalid blocks)\n", invalid)
		}
		p := frame.Packet
		fmt.Printf("SUCCESS: Received valid packet\n")
		fmt.Printf("  Command: %s (0x%02X)\n", gourd.FormatCommand(p.Command()), p.Command())
		fmt.Printf("  Length: %d bytes\n", p.Length())
		fmt.Printf("  Checksum: 0x%02X\n", p.Checksum())
		return 0
	}
}
