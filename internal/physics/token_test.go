package physics

import "testing"

func TestSpaceTokenRoundTrip(t *testing.T) {
	rec, opt := recorded()
	s := NewSpace(opt)
	s.SetGravity(Vector{Y: -1})
	before := PendingTokens()

	tok := s.Export()
	if !s.Released() {
		t.Error("expected Export to consume the handle")
	}
	if n := PendingTokens(); n != before+1 {
		t.Errorf("expected %d pending tokens, got %d", before+1, n)
	}
	if n := rec.Count("SpaceDestroy", "space#1"); n != 0 {
		t.Fatalf("expected exported space to stay alive, got %d destroys", n)
	}

	back := ImportSpace(tok)
	if g := back.Gravity(); g != (Vector{Y: -1}) {
		t.Errorf("expected gravity (0, -1), got %v", g)
	}
	if n := PendingTokens(); n != before {
		t.Errorf("expected %d pending tokens, got %d", before, n)
	}

	expectViolation(t, ErrUnknownToken, func() { ImportSpace(tok) })

	back.Release()
	if n := rec.Count("SpaceDestroy", "space#1"); n != 1 {
		t.Errorf("expected one destroy, got %d", n)
	}
}

func TestBodyTokenRoundTrip(t *testing.T) {
	b := NewBody(3, 1)
	tok := b.Export()
	expectViolation(t, ErrReleased, func() { b.Mass() })

	// a body token is not a space token
	expectViolation(t, ErrUnknownToken, func() { ImportSpace(tok) })

	back := ImportBody(tok)
	defer back.Release()
	if m := back.Mass(); m != 3 {
		t.Errorf("expected mass 3, got %f", m)
	}
}

func TestImportUnknownToken(t *testing.T) {
	expectViolation(t, ErrUnknownToken, func() { ImportBody(0) })
}
