// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Engine.IO v4 packet types, the first byte of every text frame.
const (
	eioOpen    byte = '0'
	eioClose   byte = '1'
	eioPing    byte = '2'
	eioPong    byte = '3'
	eioMessage byte = '4'
	eioUpgrade byte = '5'
	eioNoop    byte = '6'
)

// Socket.IO v5 packet types, the first byte of an Engine.IO message.
const (
	sioConnect      byte = '0'
	sioDisconnect   byte = '1'
	sioEvent        byte = '2'
	sioAck          byte = '3'
	sioConnectError byte = '4'
	sioBinaryEvent  byte = '5'
	sioBinaryAck    byte = '6'
)

const defaultNamespace = "/"

var errEmptyPacket = errors.New("socket.io: empty packet")

// packet is one decoded Socket.IO packet carried in an Engine.IO message.
type packet struct {
	kind      byte
	namespace string
	ackID     *int
	data      []byte
}

// parsePacket decodes the body of an Engine.IO message (without the leading
// '4'): type, optional "/namespace,", optional ack id, JSON data.
func parsePacket(b []byte) (packet, error) {
	if len(b) == 0 {
		return packet{}, errEmptyPacket
	}
	p := packet{kind: b[0], namespace: defaultNamespace}
	rest := b[1:]

	if p.kind == sioBinaryEvent || p.kind == sioBinaryAck {
		// Attachment count precedes the namespace; the body is unused.
		return p, nil
	}

	if len(rest) > 0 && rest[0] == '/' {
		end := bytes.IndexByte(rest, ',')
		if end < 0 {
			p.namespace = string(rest)
			return p, nil
		}
		p.namespace = string(rest[:end])
		rest = rest[end+1:]
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(string(rest[:digits]))
		if err != nil {
			return packet{}, fmt.Errorf("socket.io: ack id: %w", err)
		}
		p.ackID = &id
		rest = rest[digits:]
	}

	p.data = rest
	return p, nil
}

// eventArgs splits an event packet's data into its name and arguments.
func eventArgs(data []byte) (string, []json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return "", nil, fmt.Errorf("socket.io: event body: %w", err)
	}
	if len(args) == 0 {
		return "", nil, errors.New("socket.io: event without a name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("socket.io: event name: %w", err)
	}
	return name, args[1:], nil
}

type openPayload struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int64    `json:"pingInterval"`
	PingTimeout  int64    `json:"pingTimeout"`
	MaxPayload   int64    `json:"maxPayload"`
}

func encodeOpen(p openPayload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return append([]byte{eioOpen}, body...), nil
}

func encodeConnect(sid string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"sid": sid})
	if err != nil {
		return nil, err
	}
	return append([]byte{eioMessage, sioConnect}, body...), nil
}

func encodeConnectError(namespace, message string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	out := []byte{eioMessage, sioConnectError}
	if namespace != defaultNamespace {
		out = append(out, namespace...)
		out = append(out, ',')
	}
	return append(out, body...), nil
}

// encodeEvent builds `42["event",payload]`.
func encodeEvent(event string, payload any) ([]byte, error) {
	body, err := json.Marshal([]any{event, payload})
	if err != nil {
		return nil, err
	}
	return append([]byte{eioMessage, sioEvent}, body...), nil
}

// encodeAck builds `43<id>[]`.
func encodeAck(id int) []byte {
	out := []byte{eioMessage, sioAck}
	out = strconv.AppendInt(out, int64(id), 10)
	return append(out, '[', ']')
}
