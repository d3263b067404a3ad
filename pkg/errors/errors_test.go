package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := Newf(ErrNotFound, "index %q", "wiki.index")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `not found: index "wiki.index"`, err.Error())
	assert.Equal(t, ExitNotFound, err.ExitCode)

	corrupt := Corruptf("header length %d", 9)
	assert.ErrorIs(t, corrupt, ErrCorrupt)
	assert.NotErrorIs(t, corrupt, ErrNotFound)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"not found", New(ErrNotFound, "x"), ExitNotFound},
		{"corrupt wrapped", fmt.Errorf("reading: %w", Corruptf("bad")), ExitCorrupt},
		{"destination sentinel", fmt.Errorf("%w: %w", ErrInvalidDestination, errors.New("disk full")), ExitInvalidDestination},
		{"invalid input", New(ErrInvalidInput, "x"), ExitInvalidInput},
		{"explicit code", &AppError{Err: errors.New("x"), ExitCode: 42}, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
