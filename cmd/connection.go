// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

// serialReadTimeout bounds a serial read so the pump notices cancellation
const serialReadTimeout = 100 * time.Millisecond

// Connection is a byte stream to a board, over serial or WebSocket
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// Drain waits until written bytes have left the port
func (s *SerialConnection) Drain() error {
	return s.port.Drain()
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// WebSocketConnection carries the byte stream in binary WebSocket messages.
// Message boundaries mean nothing to the protocol; reads return the
// concatenated stream.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = copy(p, w.buf)
		return w.bufOffset, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return w.conn.Close()
}

// OpenSerialConnection opens a serial port at 8N1
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword reads LANTERN_PASSWORD or prompts on the terminal
func GetPassword() (string, error) {
	if pw := os.Getenv("LANTERN_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; read a line instead
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenConnection opens either a serial or WebSocket connection based on flags
func OpenConnection() (Connection, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		conn, err := OpenSerialConnection(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// openLink opens the flagged connection and starts pumping it into a link.
// The pump stops when ctx is cancelled or the connection fails.
func openLink(ctx context.Context) (*gourd.Link, Connection, string, error) {
	conn, info, err := OpenConnection()
	if err != nil {
		return nil, nil, "", err
	}
	link := gourd.NewLink(conn, gourd.WithLogger(log.Logger.With().Str("conn", info).Logger()))
	go func() {
		if err := link.Pump(ctx, conn); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("conn", info).Msg("connection reader stopped")
		}
	}()
	return link, conn, info, nil
}
