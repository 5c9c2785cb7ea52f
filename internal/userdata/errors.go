package userdata

import "errors"

// Business-rule rejections. Operations that fail with one of these return the
// snapshot they were given, unchanged.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyPurchased  = errors.New("already purchased")
	ErrLevelTooLow       = errors.New("level too low")
	ErrNothingToUnlock   = errors.New("nothing left to unlock")
	ErrPhraseNotFound    = errors.New("phrase not found")
	ErrPhraseNotCustom   = errors.New("only custom phrases can be deleted")
)

// Rejection wraps a business-rule sentinel with the operation that refused it.
type Rejection struct {
	Op     string
	Reason error
}

func (r *Rejection) Error() string {
	return r.Op + ": " + r.Reason.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

func reject(op string, reason error) error {
	return &Rejection{Op: op, Reason: reason}
}

// IsRejection reports whether err is an ordinary business-rule rejection as
// opposed to a programming or transport error.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
