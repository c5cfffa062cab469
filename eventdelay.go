package audio

// EventDelay delivers values after a delay counted in frames.  Events due on
// the same frame are delivered in the order they were scheduled.  Storage is
// reused, so scheduling within the capacity set by Reserve never allocates.
type EventDelay[T any] struct {
	Params Params
	events []delayEvent[T]
}

type delayEvent[T any] struct {
	n int // frames after the previous event
	v T
}

// Reserve makes room for n pending events.
func (d *EventDelay[T]) Reserve(n int) {
	if cap(d.events) < n {
		events := make([]delayEvent[T], len(d.events), n)
		copy(events, d.events)
		d.events = events
	}
}

// Delay schedules v for delivery t seconds from now.  A delay shorter than
// one frame is delivered by the next Step.
func (d *EventDelay[T]) Delay(t float64, v T) {
	if d.Params.SampleRate == 0 {
		panic("EventDelay.Delay called before InitAudio")
	}
	n := int(t * d.Params.SampleRate)
	i := 0
	for ; i < len(d.events); i++ {
		e := &d.events[i]
		if n < e.n {
			e.n -= n
			break
		}
		n -= e.n
	}
	d.events = append(d.events, delayEvent[T]{})
	copy(d.events[i+1:], d.events[i:])
	d.events[i] = delayEvent[T]{n, v}
}

// Step advances one frame and passes each value now due to f.
func (d *EventDelay[T]) Step(f func(T)) {
	if len(d.events) == 0 {
		return
	}
	d.events[0].n--
	i := 0
	for ; i < len(d.events) && d.events[i].n <= 0; i++ {
		f(d.events[i].v)
		if i+1 < len(d.events) {
			d.events[i+1].n += d.events[i].n
		}
	}
	if i > 0 {
		d.events = d.events[:copy(d.events, d.events[i:])]
	}
}

// Clear drops every pending event.
func (d *EventDelay[T]) Clear() { d.events = d.events[:0] }

func (d *EventDelay[T]) Len() int { return len(d.events) }
