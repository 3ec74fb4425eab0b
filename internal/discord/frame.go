// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package discord speaks the Discord desktop client's local RPC protocol.
//
// The client listens on a Unix socket (or a named pipe on Windows) called
// discord-ipc-N. Every message is a frame: a little-endian uint32 opcode, a
// little-endian uint32 payload length, then a JSON payload.
//
//	d := discord.NewDialer(discord.DialerConfig{CallTimeout: 5 * time.Second})
//	conn, err := d.Open(ctx, "503557087041683458")
//	if err != nil { ... }
//	defer conn.Close()
//	err = conn.SetActivity(ctx, &discord.Activity{State: ptr("Playing")})
//
// Responses are read inline by the calling goroutine, so a Conn serializes
// its callers.
package discord

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Opcode identifies the frame kind.
type Opcode uint32

const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

const (
	headerSize = 8

	// maxWriteSize is what the client accepts from us.
	maxWriteSize = 64 * 1024

	// maxReadSize bounds what we buffer from the client.
	maxReadSize = 1024 * 1024
)

// Frame is one protocol message.
type Frame struct {
	Op      Opcode
	Payload []byte
}

func (o Opcode) String() string {
	switch o {
	case OpHandshake:
		return "handshake"
	case OpFrame:
		return "frame"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(%d)", uint32(o))
	}
}

// WriteFrame writes f as a single Write call so that frames from concurrent
// writers can never interleave on a stream socket.
func WriteFrame(w io.Writer, f Frame) error {
	if len(f.Payload) > maxWriteSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrFrameTooLarge, len(f.Payload), maxWriteSize)
	}
	buf := make([]byte, headerSize+len(f.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.Op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(f.Payload)))
	copy(buf[headerSize:], f.Payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}
	op := Opcode(binary.LittleEndian.Uint32(header[0:4]))
	size := binary.LittleEndian.Uint32(header[4:8])
	if size > maxReadSize {
		return Frame{}, fmt.Errorf("%w: %s frame announces %d bytes", ErrFrameTooLarge, op, size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, err
	}
	return Frame{Op: op, Payload: payload}, nil
}
