package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("macro $$$X not found")
	err := &Error{Op: "bind", API: "A", Method: "m", Param: "op", Kind: ErrUnresolvedDefault, Err: cause}

	assert.Equal(t, "bind A.m: parameter 'op': unresolved default: macro $$$X not found", err.Error())
	assert.ErrorIs(t, err, ErrUnresolvedDefault)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRemoteCallFailed)

	wrapped := fmt.Errorf("outer: %w", err)
	var de *Error
	assert.ErrorAs(t, wrapped, &de)
	assert.Equal(t, "bind", (&Error{Op: "bind"}).Error())
}

func TestAnnotate(t *testing.T) {
	t.Parallel()

	err := annotate(&Error{Op: "bind", Kind: ErrTooManyArguments}, "A", "m")
	assert.Equal(t, "bind A.m: too many arguments", err.Error())

	kept := annotate(&Error{Op: "invoke", API: "B", Method: "n", Kind: ErrRemoteCallFailed}, "A", "m")
	assert.Equal(t, "invoke B.n: remote call failed", kept.Error())

	plain := errors.New("plain")
	assert.Same(t, plain, annotate(plain, "A", "m"))
}
