package physics

import "errors"

// Contract violations. They are raised as panics wrapped in *ContractError,
// never returned.
var (
	// ErrReleased indicates use of a handle after Release or Export.
	ErrReleased = errors.New("physics: handle already released")

	// ErrSpaceLocked indicates a structural change to a Space during Step.
	ErrSpaceLocked = errors.New("physics: space is locked while stepping")

	// ErrArbiterExpired indicates use of an Arbiter after its hook returned.
	ErrArbiterExpired = errors.New("physics: arbiter used outside its pre-solve hook")

	// ErrIndexOutOfRange indicates a contact or vertex index outside [0, count).
	ErrIndexOutOfRange = errors.New("physics: index out of range")

	// ErrAlreadyRegistered indicates adding an entity that already belongs to a Space.
	ErrAlreadyRegistered = errors.New("physics: already registered in a space")

	// ErrNotRegistered indicates removing an entity the Space does not hold.
	ErrNotRegistered = errors.New("physics: not registered in this space")

	// ErrEngineMismatch indicates mixing records from different engines.
	ErrEngineMismatch = errors.New("physics: records belong to different engines")

	// ErrBorrowedHandle indicates Release or Export of a handle lent by EachBody.
	ErrBorrowedHandle = errors.New("physics: borrowed handle cannot be released")

	// ErrUnknownToken indicates an Import of a token that was never exported,
	// was already imported, or holds another entity kind.
	ErrUnknownToken = errors.New("physics: unknown token")

	// ErrWrongGeometry indicates a geometry accessor used on another shape kind.
	ErrWrongGeometry = errors.New("physics: wrong shape geometry")
)

// ContractError is the panic value for contract violations.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func violation(op string, err error) {
	panic(&ContractError{Op: op, Err: err})
}
