package userdata

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type player struct {
	Name  string
	Score int
}

type enemy struct {
	Name string
}

func TestSetGet(t *testing.T) {
	var s Slot
	Set(&s, player{Name: "ball", Score: 3})

	got, ok := Get[player](&s)
	if !ok {
		t.Fatal("expected value present")
	}
	if got != (player{Name: "ball", Score: 3}) {
		t.Errorf("expected %+v, got %+v", player{Name: "ball", Score: 3}, got)
	}
}

func TestGetAbsent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Slot)
	}{
		{"empty", func(*Slot) {}},
		{"other struct", func(s *Slot) { Set(s, enemy{Name: "x"}) }},
		{"pointer of same type", func(s *Slot) { Set(s, &player{}) }},
		{"cleared", func(s *Slot) { Set(s, player{}); Clear(s) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Slot
			tt.setup(&s)
			got, ok := Get[player](&s)
			if ok {
				t.Errorf("expected absent, got %+v", got)
			}
			if got != (player{}) {
				t.Errorf("expected zero value, got %+v", got)
			}
		})
	}
}

func TestSetReplacesAnyType(t *testing.T) {
	var s Slot
	Set(&s, 42)
	Set(&s, "label")

	if _, ok := Get[int](&s); ok {
		t.Error("expected int to be replaced")
	}
	if v, ok := Get[string](&s); !ok || v != "label" {
		t.Errorf("expected label, got %q (%v)", v, ok)
	}
	if s.Type() != reflect.TypeFor[string]() {
		t.Errorf("expected string type, got %v", s.Type())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	var s Slot
	Set(&s, player{Score: 1})

	v, _ := Get[player](&s)
	v.Score = 99

	again, _ := Get[player](&s)
	if again.Score != 1 {
		t.Errorf("expected stored score 1, got %d", again.Score)
	}
}

func TestMutate(t *testing.T) {
	var s Slot
	Set(&s, player{Score: 1})

	ran := Mutate(&s, func(p *player) { p.Score += 10 })
	if !ran {
		t.Fatal("expected mutate to run")
	}
	v, _ := Get[player](&s)
	if v.Score != 11 {
		t.Errorf("expected 11, got %d", v.Score)
	}

	if Mutate(&s, func(e *enemy) { t.Error("callback ran for wrong type") }) {
		t.Error("expected mutate to report false for wrong type")
	}
}

func TestMutateConflictingBorrow(t *testing.T) {
	tests := []struct {
		name   string
		inside func(*Slot)
	}{
		{"get", func(s *Slot) { Get[player](s) }},
		{"set", func(s *Slot) { Set(s, 1) }},
		{"mutate", func(s *Slot) { Mutate(s, func(*player) {}) }},
		{"clear", func(s *Slot) { Clear(s) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Slot
			Set(&s, player{})

			func() {
				defer func() {
					r := recover()
					err, ok := r.(error)
					if !ok || !errors.Is(err, ErrBorrowed) {
						t.Errorf("expected ErrBorrowed panic, got %v", r)
					}
				}()
				Mutate(&s, func(*player) { tt.inside(&s) })
			}()

			if _, ok := Get[player](&s); !ok {
				t.Error("expected slot usable after conflict")
			}
		})
	}
}

func TestMutateBlocksOtherGoroutines(t *testing.T) {
	var s Slot
	Set(&s, player{Score: 1})

	inside := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Mutate(&s, func(p *player) {
			close(inside)
			time.Sleep(50 * time.Millisecond)
			p.Score = 5
		})
	}()
	<-inside

	var (
		got      player
		panicked any
	)
	func() {
		defer func() { panicked = recover() }()
		got, _ = Get[player](&s)
	}()
	<-done

	if panicked != nil {
		t.Fatalf("expected Get to wait for the other goroutine, got panic %v", panicked)
	}
	if got.Score != 5 {
		t.Errorf("expected the mutated score 5, got %d", got.Score)
	}
}

func TestConcurrentMutate(t *testing.T) {
	var s Slot
	Set(&s, 0)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				Mutate(&s, func(n *int) { *n++ })
			}
		}()
	}
	wg.Wait()

	if n, _ := Get[int](&s); n != 800 {
		t.Errorf("expected 800, got %d", n)
	}
}

func TestHas(t *testing.T) {
	var s Slot
	if s.Has() {
		t.Error("expected empty slot")
	}
	Set(&s, enemy{})
	if !s.Has() {
		t.Error("expected slot to hold a value")
	}
}
