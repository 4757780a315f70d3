// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Lantern - Gourd LED board host
//
// Runs the LED animation engine for the strip and eyes boards and speaks
// the Gourd command protocol over serial or WebSocket.

package main

import (
	"os"

	"github.com/Thermoquad/lantern/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
