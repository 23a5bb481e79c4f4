package hwtimer

// bucket is an intrusive doubly-linked list of Timeout entries that hash
// to the same wheel slot. All methods are called only from the tick
// worker; emptiness is head == nil, and buckets are never reallocated for
// the life of the Timer. Because only the worker ever touches a bucket,
// none of its methods need a lock.
type bucket struct {
	head, tail *Timeout
}

// add appends e at the tail and marks it as belonging to this bucket.
func (b *bucket) add(e *Timeout) {
	e.prev, e.next, e.bucket = b.tail, nil, b
	if b.tail != nil {
		b.tail.next = e
	} else {
		b.head = e
	}
	b.tail = e
}

// remove unlinks e from this bucket and decrements the timer's pending
// counter. It is a no-op returning false if e is not currently linked into
// this bucket (already unlinked by a racing expiry or a prior cancellation
// drain).
func (b *bucket) remove(e *Timeout) bool {
	if e.bucket != b {
		return false
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		b.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		b.tail = e.prev
	}
	e.prev, e.next, e.bucket = nil, nil, nil
	e.timer.pending.Add(-1)
	return true
}

// expireTimeouts sweeps the bucket for the current tickDeadline (ms since
// start), decrementing remainingRounds for entries still waiting out a
// revolution and unlinking entries whose revolution count has reached
// zero. Cancelled entries are not specially unlinked here mid-revolution;
// only the cancellation queue drain does that. An entry whose revolution
// count reaches zero is unlinked unconditionally and the CAS to EXPIRED
// simply fails harmlessly if it had already been cancelled.
//
// due accumulates entries that reached remaining_rounds==0 with a valid
// deadline, in sweep order. If an entry reaches remaining_rounds==0 with
// deadline > tickDeadline, the wheel was given a bad placement somewhere
// upstream: the sweep stops immediately, leaving that entry and everything
// after it linked, and returns it so the caller can treat the tick loop as
// fatally broken.
func (b *bucket) expireTimeouts(tickDeadline int64, due *[]*Timeout) (violated *Timeout) {
	e := b.head
	for e != nil {
		next := e.next
		if e.remainingRounds > 0 {
			e.remainingRounds--
			e = next
			continue
		}
		if e.deadline > tickDeadline {
			return e
		}
		b.remove(e)
		*due = append(*due, e)
		e = next
	}
	return nil
}

// drainInto pops every entry out of the bucket, decrementing the timer's
// pending counter for each. An entry already in state CANCELLED here
// (cancelled while still linked, but not yet reached by a
// cancellation-queue drain) is dropped without being added to out;
// everything else (state still INIT) is forced to CANCELLED and appended
// to out, matching the public Stop contract.
func (b *bucket) drainInto(out *[]*Timeout) {
	for e := b.head; e != nil; {
		next := e.next
		e.prev, e.next, e.bucket = nil, nil, nil
		e.timer.pending.Add(-1)
		if e.state.CompareAndSwap(stateInit, stateCancelled) {
			*out = append(*out, e)
		}
		e = next
	}
	b.head, b.tail = nil, nil
}
