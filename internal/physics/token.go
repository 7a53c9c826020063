package physics

import "sync"

// Token is an opaque integer standing for one exported handle reference. It
// fits in an Engine user-data field and carries no pointer.
type Token uintptr

var tokens = struct {
	mu      sync.Mutex
	next    Token
	pending map[Token]any
}{
	next:    1,
	pending: make(map[Token]any),
}

func export(v any) Token {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	tok := tokens.next
	tokens.next++
	tokens.pending[tok] = v
	return tok
}

func take[T any](op string, tok Token) T {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	v, ok := tokens.pending[tok].(T)
	if !ok {
		violation(op, ErrUnknownToken)
	}
	delete(tokens.pending, tok)
	return v
}

// Export moves this handle's reference into the token table. The handle is
// released as far as the caller is concerned; ImportSpace gives it back.
func (s *Space) Export() Token {
	c := s.live("Export")
	s.c = nil
	return export(c)
}

// ImportSpace redeems a token produced by (*Space).Export. Each token can be
// imported once.
func ImportSpace(tok Token) *Space {
	return &Space{c: take[*spaceCell]("ImportSpace", tok)}
}

func (b *Body) Export() Token {
	c := b.live("Export")
	if b.borrowed {
		violation("Body.Export", ErrBorrowedHandle)
	}
	b.c = nil
	return export(c)
}

func ImportBody(tok Token) *Body {
	return &Body{c: take[*bodyCell]("ImportBody", tok)}
}

// PendingTokens reports how many exported references have not been imported.
func PendingTokens() int {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	return len(tokens.pending)
}
