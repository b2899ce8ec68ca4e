package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-rts/internal/core"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

func TestEncodePutsTypeFirst(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{PlayGame{}, `{"type":"play-game"}`},
		{JoinRoom{RoomID: 3}, `{"type":"join-room","roomId":3}`},
		{EmptyCommand(7), `{"type":"command","uids":[],"details":{"type":"stand"},"currentTick":7}`},
		{GameTick{Tick: 2}, `{"type":"game-tick","tick":2,"commands":[]}`},
		{Chat{Message: "hi"}, `{"type":"chat","message":"hi"}`},
	}
	for _, tt := range tests {
		got, err := Encode(tt.msg)
		if err != nil {
			t.Fatalf("Encode(%T) failed: %v", tt.msg, err)
		}
		if string(got) != tt.want {
			t.Errorf("Encode(%T) = %s, expected %s", tt.msg, got, tt.want)
		}
	}
}

func TestDecodeEveryEncodedType(t *testing.T) {
	to := core.Pt(4.5, 2)
	msgs := []Message{
		RoomList{RoomList: []string{"Empty", "Waiting"}},
		JoinRoom{RoomID: 1},
		LeaveRoom{RoomID: 1},
		JoinedRoom{RoomID: 1, Color: "blue"},
		InitializeLevel{SpawnLocations: map[string]int{"blue": 0, "green": 3}, LevelID: "crossing"},
		InitializedLevel{},
		PlayGame{},
		Command{UIDs: []sim.EntityID{4, 5}, Details: sim.MoveTo(to), CurrentTick: 11},
		GameTick{Tick: 12, Commands: []sim.Command{{UIDs: []sim.EntityID{4}, Details: sim.AttackUID(9)}}},
		LatencyPing{},
		LatencyPong{},
		Chat{From: "green", Message: "gg"},
		LoseGame{},
		EndGame{Message: "The blue team has been defeated."},
		Error{Code: CodeRoomFull},
	}
	if len(msgs) != len(Types()) {
		t.Fatalf("test covers %d types, expected %d", len(msgs), len(Types()))
	}
	for _, m := range msgs {
		raw, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode(%T) failed: %v", m, err)
		}
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", raw, err)
		}
		if got.MessageType() != m.MessageType() {
			t.Errorf("decoded %s as %s", m.MessageType(), got.MessageType())
		}
	}
}

func TestDecodeCommand(t *testing.T) {
	raw := `{"type":"command","uids":[3],"details":{"type":"patrol","to":{"x":8,"y":1.5}},"currentTick":40}`
	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	cmd, ok := m.(Command)
	if !ok {
		t.Fatalf("decoded %T, expected Command", m)
	}
	if cmd.CurrentTick != 40 || len(cmd.UIDs) != 1 || cmd.UIDs[0] != 3 {
		t.Errorf("command = %+v", cmd)
	}
	if cmd.Details.Type != sim.OrderPatrol || cmd.Details.To == nil || cmd.Details.To.X != 8 {
		t.Errorf("details = %+v", cmd.Details)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{"type":`, ErrInvalid},
		{"unknown type", `{"type":"teleport"}`, ErrUnknownType},
		{"missing room", `{"type":"join-room"}`, ErrInvalid},
		{"room zero", `{"type":"join-room","roomId":0}`, ErrInvalid},
		{"bad order", `{"type":"command","uids":[1],"details":{"type":"fly"},"currentTick":0}`, ErrInvalid},
		{"negative tick", `{"type":"command","uids":[],"details":{"type":"stand"},"currentTick":-1}`, ErrInvalid},
		{"uid zero", `{"type":"command","uids":[0],"details":{"type":"stand"},"currentTick":0}`, ErrInvalid},
		{"fractional tick", `{"type":"game-tick","tick":1.5,"commands":[]}`, ErrInvalid},
		{"trailing data", `{"type":"play-game"} {"type":"lose-game"}`, ErrInvalid},
		{"long chat", `{"type":"chat","message":"` + strings.Repeat("a", 300) + `"}`, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestDecodeKeepsLargeTicks(t *testing.T) {
	raw := `{"type":"game-tick","tick":9007199254740993,"commands":[]}`
	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	gt, ok := m.(GameTick)
	if !ok {
		t.Fatalf("decoded %T, expected GameTick", m)
	}
	if gt.Tick != 9007199254740993 {
		t.Errorf("tick = %d, expected 9007199254740993", gt.Tick)
	}
}

func TestErrorFor(t *testing.T) {
	_, err := Decode([]byte(`{"type":"warp"}`))
	if got := ErrorFor(err); got.Code != CodeUnknownType {
		t.Errorf("code = %s, expected %s", got.Code, CodeUnknownType)
	}
	_, err = Decode([]byte(`{"type":"leave-room"}`))
	if got := ErrorFor(err); got.Code != CodeBadRequest {
		t.Errorf("code = %s, expected %s", got.Code, CodeBadRequest)
	}
}

func TestSanitizeChat(t *testing.T) {
	if got := SanitizeChat("<b>hello</b> > world"); got != "bhello/b  world" {
		t.Errorf("SanitizeChat = %q", got)
	}
}
