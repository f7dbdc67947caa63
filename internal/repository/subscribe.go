package repository

// Subscribe returns a channel that receives a fresh snapshot after every
// successful load or mutation, and a func that ends the subscription and
// closes the channel. Slow readers only ever see the newest snapshot.
func (r *Repository) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (r *Repository) publish() {
	snap := r.Snapshot()

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
