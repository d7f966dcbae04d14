package service

import (
	"sync"
	"time"

	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// Slots tracks one PendingCall per slot and refuses a second concurrent call on the same slot
type Slots struct {
	mu    sync.Mutex
	calls map[model.Slot]model.PendingCall
	now   func() time.Time
}

// NewSlots creates a guard with every slot idle
func NewSlots(now func() time.Time) *Slots {
	s := &Slots{
		calls: make(map[model.Slot]model.PendingCall, len(model.Slots)),
		now:   now,
	}
	for _, slot := range model.Slots {
		s.calls[slot] = model.PendingCall{Slot: slot, Status: model.CallIdle}
	}
	return s
}

// Begin moves a slot to in-flight, or returns ErrSlotBusy if it already is
func (s *Slots) Begin(slot model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls[slot].Status == model.CallInFlight {
		return ErrSlotBusy
	}
	started := s.now()
	s.calls[slot] = model.PendingCall{
		Slot:      slot,
		Status:    model.CallInFlight,
		StartedAt: &started,
	}
	return nil
}

// Succeed completes the in-flight call of a slot
func (s *Slots) Succeed(slot model.Slot) {
	s.finish(slot, model.CallSucceeded, "")
}

// Fail completes the in-flight call of a slot with a failure reason
func (s *Slots) Fail(slot model.Slot, err error) {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	s.finish(slot, model.CallFailed, reason)
}

func (s *Slots) finish(slot model.Slot, status model.CallStatus, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.calls[slot]
	finished := s.now()
	call.Status = status
	call.Reason = reason
	call.FinishedAt = &finished
	s.calls[slot] = call
}

// Get returns the current state of one slot
func (s *Slots) Get(slot model.Slot) model.PendingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[slot]
}

// Snapshot returns the state of every slot in a fixed order
func (s *Slots) Snapshot() []model.PendingCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PendingCall, 0, len(model.Slots))
	for _, slot := range model.Slots {
		out = append(out, s.calls[slot])
	}
	return out
}
