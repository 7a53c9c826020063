// Package userdata provides the typed extension slot carried by every
// physics handle.
//
// A Slot holds at most one value. Retrieval is keyed by the static type the
// value was stored with: asking for any other type yields "absent", exactly
// as if the slot were empty.
//
// Slots are safe for concurrent use. While a Mutate callback runs, other
// goroutines touching the slot wait for it to return; the goroutine running
// the callback panics with ErrBorrowed instead.
package userdata

import (
	"bytes"
	"errors"
	"reflect"
	"runtime"
	"strconv"
	"sync"
)

// ErrBorrowed is the panic value raised when a Mutate callback touches its
// own slot.
var ErrBorrowed = errors.New("userdata: slot already borrowed")

// Slot is a single type-erased value. The zero Slot is empty and ready to use.
type Slot struct {
	mu  sync.Mutex
	ptr any
	typ reflect.Type

	// set while a Mutate callback runs
	owner    uint64
	released chan struct{}
}

// Holder is implemented by every entity that carries a Slot. The value type
// is picked per call, so a caller may probe several candidate types with Get;
// every mismatch reads as absent.
type Holder interface {
	Data() *Slot
}

// Set stores v, replacing any previous value of any type.
func Set[V any](s *Slot, v V) {
	s.acquire()
	defer s.mu.Unlock()
	s.ptr = &v
	s.typ = reflect.TypeFor[V]()
}

// Get returns a copy of the stored value if it was stored as exactly V.
func Get[V any](s *Slot) (V, bool) {
	s.acquire()
	defer s.mu.Unlock()
	p, ok := s.lookup(reflect.TypeFor[V]()).(*V)
	if !ok {
		var zero V
		return zero, false
	}
	return *p, true
}

// Mutate runs fn with exclusive access to the stored value if it was stored
// as exactly V, and reports whether fn ran. Other goroutines wait for fn to
// return; any access to s from inside fn panics with ErrBorrowed.
func Mutate[V any](s *Slot, fn func(*V)) bool {
	s.acquire()
	p, ok := s.lookup(reflect.TypeFor[V]()).(*V)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.owner = goid()
	s.released = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		close(s.released)
		s.owner, s.released = 0, nil
		s.mu.Unlock()
	}()
	fn(p)
	return true
}

// Clear empties the slot.
func Clear(s *Slot) {
	s.acquire()
	defer s.mu.Unlock()
	s.ptr = nil
	s.typ = nil
}

// Has reports whether a value of any type is stored.
func (s *Slot) Has() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptr != nil
}

// Type returns the static type of the stored value, or nil when empty.
func (s *Slot) Type() reflect.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typ
}

func (s *Slot) lookup(want reflect.Type) any {
	if s.ptr == nil || s.typ != want {
		return nil
	}
	return s.ptr
}

// acquire locks mu once no Mutate callback holds the slot. It panics with
// ErrBorrowed when called from the callback's own goroutine.
func (s *Slot) acquire() {
	s.mu.Lock()
	for s.released != nil {
		if s.owner == goid() {
			s.mu.Unlock()
			panic(ErrBorrowed)
		}
		released := s.released
		s.mu.Unlock()
		<-released
		s.mu.Lock()
	}
}

// goid parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
