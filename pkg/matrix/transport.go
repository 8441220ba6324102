package matrix

import (
	"fmt"
	"sort"
	"sync"
)

// Transport carries frames to the matrix controller.
type Transport interface {
	// WriteRead sends one encoded frame and returns the controller reply.
	WriteRead(frame []byte) ([]byte, error)
	Close() error
}

// FrameHook lets a SimTransport answer a frame differently. Returning nil
// falls back to the normal reply.
type FrameHook func(f Frame) []byte

// SimTransport is an in-memory controller useful for tests and dry runs. It
// decodes every frame, keeps the staged and committed relay state and
// acknowledges.
type SimTransport struct {
	OnFrame FrameHook

	mu        sync.Mutex
	frames    []Frame
	staged    map[string][]int
	committed map[string][]int
	closed    bool
}

// NewSimTransport creates a simulator with every relay open.
func NewSimTransport() *SimTransport {
	return &SimTransport{
		staged:    make(map[string][]int),
		committed: make(map[string][]int),
	}
}

// WriteRead implements Transport.
func (s *SimTransport) WriteRead(data []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("matrix: simulator closed")
	}

	f, err := DecodeFrame(data)
	if err != nil {
		return Ack(Op(0), StatusBadFrame), nil
	}
	s.frames = append(s.frames, f)
	if s.OnFrame != nil {
		if resp := s.OnFrame(f); resp != nil {
			return resp, nil
		}
	}

	switch f.Op {
	case OpReset:
		s.staged = make(map[string][]int)
	case OpClose:
		s.staged[f.ID] = append([]int(nil), f.Busses...)
	case OpCommit:
		s.committed = make(map[string][]int, len(s.staged))
		for id, b := range s.staged {
			s.committed[id] = b
		}
	default:
		return Ack(f.Op, StatusBadFrame), nil
	}
	return Ack(f.Op, StatusOK), nil
}

// Close implements Transport.
func (s *SimTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns every frame received so far.
func (s *SimTransport) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Frame(nil), s.frames...)
}

// Committed returns the latched relay state: component ID to busses.
func (s *SimTransport) Committed() map[string][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]int, len(s.committed))
	for id, b := range s.committed {
		out[id] = append([]int(nil), b...)
	}
	return out
}

// Dump lists the committed state, one component per line, sorted by ID.
func (s *SimTransport) Dump() []string {
	state := s.Committed()
	ids := make([]string, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%s %v", id, state[id])
	}
	return out
}
