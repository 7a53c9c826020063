package physics

import (
	"errors"
	"testing"

	"github.com/san-kum/cpsafe/internal/engine/cpengine"
	"github.com/san-kum/cpsafe/internal/engine/enginetest"
)

// expectViolation reports an error unless fn panics with a contract error
// wrapping want. It uses Errorf so it is safe to call from inside hooks.
func expectViolation(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected panic with %v", want)
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, r)
			return
		}
		var ce *ContractError
		if !errors.As(err, &ce) {
			t.Errorf("expected *ContractError, got %T", r)
		}
	}()
	fn()
}

func recorded() (*enginetest.Recorder, Option) {
	rec := enginetest.New(cpengine.New())
	return rec, WithEngine(rec)
}
