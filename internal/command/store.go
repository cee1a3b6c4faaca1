package command

import (
	"sync"
	"time"
)

// Store owns the single command slot and the single result slot. Issuing a
// new command replaces the previous one. Every operation takes the same
// mutex so that TTL checks and the expired-to-timeout transition are atomic
// with respect to concurrent pollers.
type Store struct {
	mu       sync.Mutex
	cmd      Command
	result   *Result
	resultAt time.Time

	commandTTL time.Duration
	resultTTL  time.Duration
	now        func() time.Time
}

// NewStore creates an empty store with the given validity windows.
func NewStore(commandTTL, resultTTL time.Duration) *Store {
	return &Store{
		commandTTL: commandTTL,
		resultTTL:  resultTTL,
		now:        time.Now,
	}
}

// Issue places a new capture command, replacing any outstanding one and
// discarding any stale result. Register commands must carry a student name.
func (s *Store) Issue(mode Mode, reg Registration) error {
	if mode == ModeRegister && reg.StudentName == "" {
		return ErrNameRequired
	}
	if mode != ModeRegister {
		reg = Registration{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cmd = Command{
		Mode:         mode,
		Registration: reg,
		IssuedAt:     s.now(),
		Pending:      true,
	}
	s.result = nil
	s.resultAt = time.Time{}
	return nil
}

// Poll is called by the camera. A pending command within its TTL is handed
// out; a pending command past its TTL is expired here and now, publishing a
// timeout result so the frontend poller is not left waiting.
func (s *Store) Poll() PollResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd.Pending {
		if s.now().Sub(s.cmd.IssuedAt) < s.commandTTL {
			return PollResponse{
				Status:      PollStatusCapture,
				Mode:        s.cmd.Mode,
				StudentName: s.cmd.StudentName,
			}
		}
		s.cmd.Pending = false
		s.result = &Result{Status: StatusTimeout, Message: "Capture timed out"}
		s.resultAt = s.now()
	}
	return PollResponse{Status: PollStatusNoCommand}
}

// PublishResult records the outcome of a capture attempt and marks the
// command consumed, whichever path produced the image.
func (s *Store) PublishResult(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res2 := res
	s.result = &res2
	s.resultAt = s.now()
	s.cmd.Pending = false
}

// PollResult returns the stored result while it is still within its TTL.
// Otherwise ok is false and pending reports whether a capture is still in
// flight, so the frontend can tell "still working" from "nothing happened".
func (s *Store) PollResult() (res Result, ok bool, pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil && s.now().Sub(s.resultAt) < s.resultTTL {
		return *s.result, true, s.cmd.Pending
	}
	return Result{}, false, s.cmd.Pending
}

// Current returns a copy of the command slot. The recognize path uses it to
// recover registration metadata when the camera omits the name header.
func (s *Store) Current() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd
}

// Clear resets both slots. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmd = Command{}
	s.result = nil
	s.resultAt = time.Time{}
}
