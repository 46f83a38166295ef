package controller

type TogglePhase string

const (
	ToggleApplied    TogglePhase = "applied"
	ToggleConfirmed  TogglePhase = "confirmed"
	ToggleRolledBack TogglePhase = "rolled_back"
)

// ToggleOutcome tracks one optimistic status flip. It starts Applied and
// ends either Confirmed or RolledBack; Prior is the completed value to
// restore on rollback.
type ToggleOutcome struct {
	ID    int64
	Prior bool
	Phase TogglePhase
}

func applyToggle(id int64, prior bool) *ToggleOutcome {
	return &ToggleOutcome{ID: id, Prior: prior, Phase: ToggleApplied}
}

func (o *ToggleOutcome) confirm() bool {
	if o.Phase != ToggleApplied {
		return false
	}
	o.Phase = ToggleConfirmed
	return true
}

// rollback returns the value to restore.
func (o *ToggleOutcome) rollback() (bool, bool) {
	if o.Phase != ToggleApplied {
		return false, false
	}
	o.Phase = ToggleRolledBack
	return o.Prior, true
}
