package authz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDenied_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("call clubInfo: %w", &DeniedError{
		Collection: "Club",
		Function:   "clubInfo",
		Reason:     "only the owner may call this",
	})
	assert.True(t, IsDenied(err))
	assert.False(t, IsDenied(errors.New("some other failure")))
}

func TestDeniedError_MessageNamesCollectionAndFunction(t *testing.T) {
	err := &DeniedError{Collection: "Club", Function: "del", Reason: "nope"}
	assert.Contains(t, err.Error(), "Club")
	assert.Contains(t, err.Error(), "del")
	assert.Contains(t, err.Error(), "nope")
}
