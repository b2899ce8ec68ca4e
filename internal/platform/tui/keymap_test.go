package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-rts/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Action
		quit bool
	}{
		{"move", runeKey('m'), core.ActionMove, false},
		{"attack", runeKey('a'), core.ActionAttack, false},
		{"construct", runeKey('u'), core.ActionConstruct, false},
		{"pause", runeKey('P'), core.ActionPause, false},
		{"space selects", tea.KeyMsg{Type: tea.KeySpace}, core.ActionSelect, false},
		{"tab cycles units", tea.KeyMsg{Type: tea.KeyTab}, core.ActionSelectNext, false},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, core.ActionCursorUp, false},
		{"vim down", runeKey('j'), core.ActionCursorDown, false},
		{"q quits", runeKey('q'), core.ActionQuit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", runeKey('z'), core.ActionNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := km.MapKey(tt.msg)
			if got != tt.want || quit != tt.quit {
				t.Errorf("expected %v (quit=%v), got %v (quit=%v)", tt.want, tt.quit, got, quit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()
	if km.MapKeyToFrame(runeKey('m'), &frame) {
		t.Fatal("move should not quit")
	}
	km.MapKeyToFrame(runeKey('z'), &frame)
	if !frame.Has(core.ActionMove) || len(frame.Actions()) != 1 {
		t.Errorf("expected only move in frame, got %v", frame.Actions())
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionHistory},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{runeKey('k'), MenuActionUp},
		{runeKey('b'), MenuActionBack},
		{runeKey('q'), MenuActionQuit},
		{runeKey('x'), MenuActionNone},
	}
	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.msg.String(), tt.want, got)
		}
	}
}
