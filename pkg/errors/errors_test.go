package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrStaleState, "pending edit already reviewed")
	require.True(t, errors.Is(clone, ErrStaleState))
	require.False(t, errors.Is(clone, ErrNotFound))
	require.Equal(t, http.StatusConflict, clone.Status)
	require.Equal(t, "already reviewed, please refresh", ErrStaleState.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.EqualError(t, appErr.Unwrap(), "boom")

	wrapped := fmt.Errorf("service: %w", Clone(ErrNoOp, ""))
	require.Equal(t, ErrNoOp.Code, FromError(wrapped).Code)
}

func TestWithFieldsCopiesDetails(t *testing.T) {
	fields := map[string]string{"typeOfDrive": "must be one of ON_CAMPUS, OFF_CAMPUS, VIRTUAL"}
	err := WithFields(ErrValidation, "invalid company fields", fields)
	fields["typeOfDrive"] = "mutated"

	require.Equal(t, "invalid company fields", err.Message)
	require.Equal(t, "must be one of ON_CAMPUS, OFF_CAMPUS, VIRTUAL", err.Fields["typeOfDrive"])
	require.Nil(t, ErrValidation.Fields)
}
