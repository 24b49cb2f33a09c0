package scanner

import "sync"

// subscriptionBuffer is the per-subscriber channel capacity. A subscriber
// that falls further behind loses the oldest values; delivery never blocks
// the detection loop.
const subscriptionBuffer = 16

// Results is the broadcast stream of decoded values for one scanning
// session. All current subscribers receive each value in subscription
// order. The stream ends either cleanly on stop or with a single terminal
// error; afterwards no further values are delivered.
type Results struct {
	mu   sync.Mutex
	subs []*Subscription
	err  error
	done bool
}

func newResults() *Results { return &Results{} }

// Subscription is one subscriber's view of a Results stream.
type Subscription struct {
	r  *Results
	ch chan string
}

// Values returns the channel decoded values arrive on. It is closed when the
// stream terminates or the subscription is cancelled; check Err afterwards.
func (s *Subscription) Values() <-chan string { return s.ch }

// Err returns the terminal error of the stream, nil while the stream is live
// or after a clean stop.
func (s *Subscription) Err() error { return s.r.Err() }

// Cancel detaches the subscription and closes its channel. Safe to call
// after the stream has terminated.
func (s *Subscription) Cancel() {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for i, sub := range s.r.subs {
		if sub == s {
			s.r.subs = append(s.r.subs[:i], s.r.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Subscribe attaches a new subscriber. Subscribing to an already-terminated
// stream yields a closed channel immediately.
func (r *Results) Subscribe() *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub := &Subscription{r: r, ch: make(chan string, subscriptionBuffer)}
	if r.done {
		close(sub.ch)
		return sub
	}
	r.subs = append(r.subs, sub)
	return sub
}

// Err returns the terminal error, if any, once the stream has ended.
func (r *Results) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done reports whether the stream has terminated.
func (r *Results) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// publish delivers a decoded value to every current subscriber. Values
// published after termination are dropped.
func (r *Results) publish(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	for _, sub := range r.subs {
		select {
		case sub.ch <- value:
		default:
			// Subscriber lags: drop its oldest buffered value.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- value
		}
	}
}

// fail terminates the stream with err. Only the first terminal event wins.
func (r *Results) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	r.err = err
	for _, sub := range r.subs {
		close(sub.ch)
	}
	r.subs = nil
}

// stop terminates the stream cleanly.
func (r *Results) stop() { r.fail(nil) }
