package sim

// Command is one player instruction: an order applied to a set of entities.
// It is the unit exchanged between lockstep peers.
type Command struct {
	UIDs    []EntityID `json:"uids"`
	Details Order      `json:"details"`
}

// Apply runs the command against w.
func (c Command) Apply(w *World) int { return w.ProcessCommand(c.UIDs, c.Details) }

// ProcessCommand gives each listed entity its own copy of the order and
// returns how many entities received it. Unknown or dead ids are skipped.
// An order aimed at an entity that no longer exists is dropped entirely,
// because peers may have removed it on the same tick.
func (w *World) ProcessCommand(uids []EntityID, o Order) int {
	if o.ToUID != 0 {
		t, ok := w.byID[o.ToUID]
		if !ok || !t.Alive() {
			return 0
		}
	}

	n := 0
	for _, id := range uids {
		e, ok := w.byID[id]
		if !ok || !e.Alive() {
			continue
		}
		own := o.Clone()
		if own.Type == OrderPatrol && own.From == nil {
			p := e.Pos()
			own.From = &p
		}
		e.SetOrder(own)
		n++
	}
	return n
}
