// Package observer provides typed change notification with releasable subscriptions.
//
// A Subject is not safe for concurrent use. Everything that publishes or subscribes
// is expected to run on the owning process's run loop.
package observer

// Subject delivers every published value to its current subscribers, in subscription order
type Subject[T any] struct {
	nextID int
	subs   []*Subscription
	fns    map[int]func(T)
}

// Subscription is the handle returned by Subscribe
// Release must be called when the subscriber goes away
type Subscription struct {
	id      int
	release func(id int)
}

// Subscribe registers fn and returns the subscription handle
func (s *Subject[T]) Subscribe(fn func(T)) *Subscription {
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}

	s.nextID++
	sub := &Subscription{
		id:      s.nextID,
		release: s.remove,
	}

	s.fns[sub.id] = fn
	s.subs = append(s.subs, sub)
	return sub
}

// Publish calls every subscriber with v
// A subscriber released during Publish is not called afterwards, one added during Publish
// receives the next value only
func (s *Subject[T]) Publish(v T) {
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)

	for _, sub := range subs {
		fn, ok := s.fns[sub.id]
		if !ok {
			continue
		}

		fn(v)
	}
}

// Len returns the number of active subscriptions
func (s *Subject[T]) Len() int {
	return len(s.subs)
}

func (s *Subject[T]) remove(id int) {
	if _, ok := s.fns[id]; !ok {
		return
	}

	delete(s.fns, id)
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
}

// Release removes the subscription, it is safe to call more than once and on nil
func (s *Subscription) Release() {
	if s == nil || s.release == nil {
		return
	}

	s.release(s.id)
	s.release = nil
}

// Group releases several subscriptions together
type Group []*Subscription

// Add appends subscriptions to the group
func (g *Group) Add(subs ...*Subscription) {
	*g = append(*g, subs...)
}

// Release releases every subscription in the group and empties it
func (g *Group) Release() {
	for _, sub := range *g {
		sub.Release()
	}

	*g = nil
}
