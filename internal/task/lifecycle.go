package task

import "time"

// StampCompletion keeps completed_at in step with a status change carried
// by the patch: moving to completed stamps now, moving anywhere else clears
// it. Patches that leave the status alone are returned unchanged.
func (p Patch) StampCompletion(now time.Time) Patch {
	st, ok := p.Status.Value()
	if !ok {
		return p
	}
	if st == StatusCompleted {
		p.CompletedAt = Set(now)
	} else {
		p.CompletedAt = Clear[time.Time]()
	}
	return p
}

// StampCompletion applies the same rule to a new task.
func (f Fields) StampCompletion(now time.Time) Fields {
	if f.Status == StatusCompleted {
		if f.CompletedAt == nil {
			f.CompletedAt = &now
		}
	} else {
		f.CompletedAt = nil
	}
	return f
}
