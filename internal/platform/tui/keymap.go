package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-rts/internal/core"
)

// GameKeyMap holds the bindings of the map viewer. Each binding maps to one
// core.Action so the viewer logic never sees physical keys.
type GameKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	Next      key.Binding
	Clear     key.Binding
	Move      key.Binding
	Attack    key.Binding
	Patrol    key.Binding
	Guard     key.Binding
	Deploy    key.Binding
	Hunt      key.Binding
	Sentry    key.Binding
	Construct key.Binding
	Cycle     key.Binding
	Pause     key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Move, k.Attack, k.Clear, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Next, k.Clear},
		{k.Move, k.Attack, k.Patrol, k.Guard, k.Deploy},
		{k.Hunt, k.Sentry, k.Construct, k.Cycle},
		{k.Pause, k.Help, k.Back, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "cursor up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "cursor down")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "cursor left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cursor right")),
		Select:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "select")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next unit")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Move:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Attack:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "attack")),
		Patrol:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "patrol")),
		Guard:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "guard")),
		Deploy:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deploy")),
		Hunt:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hunt")),
		Sentry:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sentry")),
		Construct: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "construct unit")),
		Cycle:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next unit type")),
		Pause:     key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pause")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// KeyMapper translates Bubble Tea key messages to viewer actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	Keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{Keys: DefaultGameKeyMap()}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	k := km.Keys
	if key.Matches(msg, k.Quit) {
		return core.ActionQuit, true
	}

	bindings := []struct {
		b key.Binding
		a core.Action
	}{
		{k.Up, core.ActionCursorUp},
		{k.Down, core.ActionCursorDown},
		{k.Left, core.ActionCursorLeft},
		{k.Right, core.ActionCursorRight},
		{k.Select, core.ActionSelect},
		{k.Next, core.ActionSelectNext},
		{k.Clear, core.ActionClear},
		{k.Move, core.ActionMove},
		{k.Attack, core.ActionAttack},
		{k.Patrol, core.ActionPatrol},
		{k.Guard, core.ActionGuard},
		{k.Deploy, core.ActionDeploy},
		{k.Hunt, core.ActionHunt},
		{k.Sentry, core.ActionSentry},
		{k.Construct, core.ActionConstruct},
		{k.Pause, core.ActionPause},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.b) {
			return b.a, false
		}
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionHistory
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionHistory
	}
	return MenuActionNone
}
