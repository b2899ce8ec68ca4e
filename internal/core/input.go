package core

// Action is a semantic viewer action, decoupled from the physical key.
type Action int

const (
	ActionNone Action = iota
	ActionCursorUp
	ActionCursorDown
	ActionCursorLeft
	ActionCursorRight
	ActionSelect     // Toggle selection of the unit under the cursor
	ActionSelectNext // Cycle through own units
	ActionClear      // Clear selection
	ActionMove       // Order selected units to move to the cursor
	ActionAttack     // Attack the entity under the cursor
	ActionPatrol     // Patrol between current position and cursor
	ActionGuard      // Guard the entity under the cursor
	ActionDeploy     // Deploy a harvester onto the oilfield under the cursor
	ActionHunt       // Hunt anywhere on the map
	ActionSentry     // Hold position with extended sight
	ActionConstruct  // Ask selected starports to build the next unit
	ActionPause
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:        "None",
	ActionCursorUp:    "CursorUp",
	ActionCursorDown:  "CursorDown",
	ActionCursorLeft:  "CursorLeft",
	ActionCursorRight: "CursorRight",
	ActionSelect:      "Select",
	ActionSelectNext:  "SelectNext",
	ActionClear:       "Clear",
	ActionMove:        "Move",
	ActionAttack:      "Attack",
	ActionPatrol:      "Patrol",
	ActionGuard:       "Guard",
	ActionDeploy:      "Deploy",
	ActionHunt:        "Hunt",
	ActionSentry:      "Sentry",
	ActionConstruct:   "Construct",
	ActionPause:       "Pause",
	ActionQuit:        "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame collects the actions triggered between two simulation ticks.
type InputFrame struct {
	order   []Action
	pressed map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{pressed: make(map[Action]bool)}
}

// Set records an action. Repeated actions are kept once, in first-seen order.
func (f *InputFrame) Set(a Action) {
	if f.pressed == nil {
		f.pressed = make(map[Action]bool)
	}
	if f.pressed[a] {
		return
	}
	f.pressed[a] = true
	f.order = append(f.order, a)
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.pressed[a]
}

// Actions returns the triggered actions in the order they arrived.
func (f InputFrame) Actions() []Action {
	return f.order
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	clear(f.pressed)
	f.order = f.order[:0]
}
