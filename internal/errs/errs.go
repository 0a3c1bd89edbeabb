package errs

import (
	"fmt"
)

func Wrap(sentinel, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func WrapMsg(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// WrapMsgErr keeps both the sentinel and err reachable through errors.Is.
func WrapMsgErr(sentinel error, msg string, err error) error {
	if err == nil {
		return WrapMsg(sentinel, msg)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, msg, err)
}
