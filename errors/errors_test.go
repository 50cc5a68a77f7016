package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("oops")
	assert.Equal(t, "oops", err.Error())
	AssertCode(t, err, DefaultCode)
}

func TestWithCode(t *testing.T) {
	err := New("not here", NotFound())
	AssertCode(t, err, 404)

	err = New("expired", SessionExpired())
	assert.True(t, IsSessionExpired(err))
	assert.False(t, IsSessionExpired(New("other", BadRequest())))
	assert.False(t, IsSessionExpired(fmt.Errorf("plain")))
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := New("could not save", WithCause(cause))

	assert.Equal(t, "could not save: disk on fire", err.Error())
	assert.Equal(t, "disk on fire", err.(Error).Cause().Error())
}

func TestWithCause_KeepsCode(t *testing.T) {
	err := New("nope", Forbidden(), WithCause(fmt.Errorf("because")))
	AssertCode(t, err, 403)
}
