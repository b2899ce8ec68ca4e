// Package protocol defines the JSON messages exchanged between lockstep
// clients and the room server. Every inbound message is checked against an
// embedded JSON Schema before it is decoded.
package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vovakirdan/tui-rts/internal/sim"
)

//go:embed schemas/messages.schema.json
var schemaFS embed.FS

const schemaURL = "messages.schema.json"

// Error codes sent in Error messages.
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeUnknownType = "UNKNOWN_TYPE"
	CodeRoomFull    = "ROOM_FULL"
	CodeNotInRoom   = "NOT_IN_ROOM"
	CodeRateLimited = "RATE_LIMITED"
)

var (
	// ErrUnknownType is returned for a message whose type is not known.
	ErrUnknownType = errors.New("protocol: unknown message type")
	// ErrInvalid is returned when a message fails schema validation.
	ErrInvalid = errors.New("protocol: invalid message")
)

// Base lets us route unknown JSON messages by type.
type Base struct {
	Type Type `json:"type"`
}

// DecodeBase reads only the type.
func DecodeBase(b []byte) (Base, error) {
	var m Base
	err := json.Unmarshal(b, &m)
	return m, err
}

var (
	schemasOnce sync.Once
	schemas     map[Type]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() (map[Type]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		data, err := schemaFS.ReadFile("schemas/" + schemaURL)
		if err != nil {
			schemasErr = err
			return
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
			schemasErr = fmt.Errorf("protocol: cannot add schema: %w", err)
			return
		}
		out := make(map[Type]*jsonschema.Schema)
		for _, t := range Types() {
			s, err := c.Compile(schemaURL + "#/$defs/" + string(t))
			if err != nil {
				schemasErr = fmt.Errorf("protocol: cannot compile %s schema: %w", t, err)
				return
			}
			out[t] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// Types lists every message type.
func Types() []Type {
	return []Type{
		TypeRoomList, TypeJoinRoom, TypeLeaveRoom, TypeJoinedRoom,
		TypeInitializeLevel, TypeInitializedLevel, TypePlayGame,
		TypeCommand, TypeGameTick, TypeLatencyPing, TypeLatencyPong,
		TypeChat, TypeLoseGame, TypeEndGame, TypeError,
	}
}

// Decode validates raw against the schema for its type and returns the
// concrete message value (RoomList, Command, ...).
func Decode(raw []byte) (Message, error) {
	base, err := DecodeBase(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msg, ok := newMessage(base.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, base.Type)
	}

	all, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := all[base.Type].Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, base.Type, err)
	}

	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return reflect.ValueOf(msg).Elem().Interface().(Message), nil
}

// Encode marshals m with its type discriminator first.
func Encode(m Message) ([]byte, error) {
	switch v := m.(type) {
	case Command:
		if v.UIDs == nil {
			v.UIDs = []sim.EntityID{}
		}
		m = v
	case GameTick:
		if v.Commands == nil {
			v.Commands = []sim.Command{}
		}
		m = v
	case RoomList:
		if v.RoomList == nil {
			v.RoomList = []string{}
		}
		m = v
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s: %w", m.MessageType(), err)
	}
	typ, _ := json.Marshal(m.MessageType())

	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// SanitizeChat removes angle brackets so chat text can never carry markup.
func SanitizeChat(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// ErrorFor maps a decode error to the code reported to the peer.
func ErrorFor(err error) Error {
	code := CodeBadRequest
	if errors.Is(err, ErrUnknownType) {
		code = CodeUnknownType
	}
	return Error{Code: code, Message: err.Error()}
}
