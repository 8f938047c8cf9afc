package eventdetails

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

type Subscriber func(state *EventDetails)

// Store holds the current event details and applies actions to it one at a time.
// Subscribers run in the order they subscribed and must not Dispatch themselves.
type Store struct {
	dispatchLock *sync.Mutex
	lock         *sync.RWMutex
	state        *EventDetails
	log          *logrus.Entry
	metrics      *storeMetrics
	subs         map[int]Subscriber
	nextSub      int
}

func NewStore(log *logrus.Entry) *Store {
	return &Store{
		dispatchLock: &sync.Mutex{},
		lock:         &sync.RWMutex{},
		state:        Default(),
		log:          log.WithField("store", "eventdetails"),
		metrics:      storeMetricsRegistry(),
		subs:         make(map[int]Subscriber),
	}
}

// State returns the current event details. Treat it as read only.
func (s *Store) State() *EventDetails {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// Dispatch applies action and returns the new state and if it's a different state than before
func (s *Store) Dispatch(action Action) (*EventDetails, bool) {
	if action == nil {
		return s.State(), false
	}
	if a, ok := action.(*LoadEventDetails); ok && a == nil {
		return s.State(), false
	}
	log := s.log.WithField("action.type", action.Type())

	s.dispatchLock.Lock()
	defer s.dispatchLock.Unlock()

	s.lock.Lock()
	prev := s.state
	next := Reduce(prev, action)
	changed := next != prev
	s.state = next
	var subs []Subscriber
	if changed {
		ids := make([]int, 0, len(s.subs))
		for id := range s.subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		subs = make([]Subscriber, 0, len(ids))
		for _, id := range ids {
			subs = append(subs, s.subs[id])
		}
	}
	s.lock.Unlock()

	s.metrics.observeDispatch(action.Type(), changed, next)

	if !changed {
		log.Trace("No change")
		return next, false
	}

	log.WithFields(logrus.Fields{
		"receiver.name":    next.ReceiverName,
		"incentives.count": len(next.AvailableIncentives),
		"prizes.count":     len(next.Prizes),
	}).Debug("Event details replaced")

	for _, sub := range subs {
		sub(next)
	}
	return next, true
}

// Subscribe registers f to be called after every change. Call the returned func to stop.
func (s *Store) Subscribe(f Subscriber) func() {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = f
	s.metrics.subscribers.Inc()

	once := sync.Once{}
	return func() {
		once.Do(func() {
			s.lock.Lock()
			defer s.lock.Unlock()
			delete(s.subs, id)
			s.metrics.subscribers.Dec()
		})
	}
}
