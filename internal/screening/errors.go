package screening

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is the class of every scoring precondition failure.
// Use errors.Is to test for it.
var ErrInvalidResponse = errors.New("invalid response")

// ErrNoResponses is returned when scoring is attempted with an empty
// response set. Answering a subset of items is legal; answering nothing is not.
var ErrNoResponses = fmt.Errorf("%w: no responses to score", ErrInvalidResponse)

// ResponseError identifies the offending item and option index.
type ResponseError struct {
	Item   int
	Index  int
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid response: item %d, option %d: %s", e.Item, e.Index, e.Reason)
}

// Is reports ResponseError as an ErrInvalidResponse.
func (e *ResponseError) Is(target error) bool {
	return target == ErrInvalidResponse
}
