package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Message(t *testing.T) {
	cause := stderrors.New("net::ERR_NAME_NOT_RESOLVED")

	err := Navigation("navigating to search page", cause)

	assert.Equal(t, "navigating to search page: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace())
}

func TestDomainError_NoCause(t *testing.T) {
	err := NotFound("listing not archived", nil)

	assert.Equal(t, "listing not archived", err.Error())
	assert.NotEmpty(t, err.StackTrace())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "browser", err: Browser("launch", nil), want: ErrTypeBrowser},
		{name: "wrapped", err: fmt.Errorf("scrape: %w", InvalidInput("bad page", nil)), want: ErrTypeInvalidInput},
		{name: "plain", err: stderrors.New("boom"), want: ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}

	assert.False(t, Is(nil, ErrTypeInternal))
	assert.True(t, Is(Unavailable("archive disabled", nil), ErrTypeUnavailable))
}
