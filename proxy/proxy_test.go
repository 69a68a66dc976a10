package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: OpCall, Member: "DoThis", Err: ErrUnknownMember}
	assert.Equal(t, "call DoThis: unknown member", err.Error())
	assert.True(t, errors.Is(err, ErrUnknownMember))

	open := &TransportError{Op: OpOpen, Err: ErrNoObject}
	assert.Equal(t, "open: no such object", open.Error())
}
