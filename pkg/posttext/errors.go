package posttext

import (
	"errors"
	"fmt"
)

// ErrUnbalancedPost is returned when a post body closes while a filtered
// region opened inside it is still active.
var ErrUnbalancedPost = errors.New("post body closed inside a filtered region")

// UnknownEntityError is returned for a named entity reference that does not
// resolve to a character.
type UnknownEntityError struct {
	Name string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity reference &%s;", e.Name)
}

// MissingAttrError is returned when a tag lacks an attribute the filter needs.
type MissingAttrError struct {
	Tag  string
	Attr string
}

func (e *MissingAttrError) Error() string {
	return fmt.Sprintf("<%s> has no %s attribute", e.Tag, e.Attr)
}

// CharRefError is returned when a numeric character reference cannot be
// converted to a character.
type CharRefError struct {
	Ref string
	Err error
}

func (e *CharRefError) Error() string {
	return fmt.Sprintf("invalid character reference &#%s;: %v", e.Ref, e.Err)
}

func (e *CharRefError) Unwrap() error {
	return e.Err
}
