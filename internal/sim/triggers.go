package sim

// TriggerType selects when a trigger fires.
type TriggerType string

const (
	// TriggerTimed fires once Time ticks have passed, and again every Time
	// ticks when Repeat is set.
	TriggerTimed TriggerType = "timed"
	// TriggerConditional fires once, the first time its condition holds.
	TriggerConditional TriggerType = "conditional"
)

// Condition kinds.
const (
	ConditionTeamEliminated = "team-eliminated"
	ConditionCashAtLeast    = "cash-at-least"
	ConditionEntityDead     = "entity-dead"
)

// Action kinds.
const (
	TriggerAdvisory = "advisory"
	TriggerAddCash  = "add-cash"
	TriggerSpawn    = "spawn"
	TriggerEndGame  = "end-game"
)

// TriggerSpec is a level event.
type TriggerSpec struct {
	Type      TriggerType      `yaml:"type" json:"type"`
	Time      uint64           `yaml:"time,omitempty" json:"time,omitempty"`
	Repeat    bool             `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Condition TriggerCondition `yaml:"condition,omitempty" json:"condition,omitempty"`
	Action    TriggerAction    `yaml:"action" json:"action"`
}

// TriggerCondition is the predicate of a conditional trigger.
type TriggerCondition struct {
	Kind   string   `yaml:"kind" json:"kind"`
	Team   string   `yaml:"team,omitempty" json:"team,omitempty"`
	Amount int      `yaml:"amount,omitempty" json:"amount,omitempty"`
	UID    EntityID `yaml:"uid,omitempty" json:"uid,omitempty"`
}

// TriggerAction is what a trigger does when it fires.
type TriggerAction struct {
	Kind   string `yaml:"kind" json:"kind"`
	Team   string `yaml:"team,omitempty" json:"team,omitempty"`
	Text   string `yaml:"text,omitempty" json:"text,omitempty"`
	Amount int    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Spawn  *Spawn `yaml:"spawn,omitempty" json:"spawn,omitempty"`
}

type trigger struct {
	spec TriggerSpec
	next uint64 // tick a timed trigger is due
	done bool
}

type triggerSet struct {
	items []*trigger
}

func newTriggerSet(specs []TriggerSpec) *triggerSet {
	ts := &triggerSet{}
	for _, s := range specs {
		ts.items = append(ts.items, &trigger{spec: s, next: s.Time})
	}
	return ts
}

// run fires the triggers due at the current tick, in declaration order.
func (ts *triggerSet) run(w *World) {
	if w.ended {
		return
	}
	interval := uint64(max(1, w.cfg.Triggers.ConditionIntervalTicks))
	for _, t := range ts.items {
		if t.done {
			continue
		}
		switch t.spec.Type {
		case TriggerTimed:
			if w.tick < t.next {
				continue
			}
			if t.spec.Repeat && t.spec.Time > 0 {
				t.next += t.spec.Time
			} else {
				t.done = true
			}
			w.runAction(t.spec.Action)
		case TriggerConditional:
			if w.tick%interval != 0 || !w.holds(t.spec.Condition) {
				continue
			}
			t.done = true
			w.runAction(t.spec.Action)
		}
	}
}

func (w *World) holds(c TriggerCondition) bool {
	switch c.Kind {
	case ConditionTeamEliminated:
		return w.Defeated(c.Team)
	case ConditionCashAtLeast:
		return w.cash[c.Team] >= c.Amount
	case ConditionEntityDead:
		e, ok := w.byID[c.UID]
		return !ok || !e.Alive()
	}
	return false
}

func (w *World) runAction(a TriggerAction) {
	switch a.Kind {
	case TriggerAdvisory:
		w.advise(a.Team, a.Text)
	case TriggerAddCash:
		w.cash[a.Team] += a.Amount
	case TriggerSpawn:
		if a.Spawn != nil {
			_, _ = w.Add(*a.Spawn)
		}
	case TriggerEndGame:
		w.ended = true
		w.endMessage = a.Text
		if a.Text != "" {
			w.advise(a.Team, a.Text)
		}
	}
}
