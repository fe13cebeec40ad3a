package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeNetwork, 0, "connection refused to %s", "danbooru.donmai.us")
	assert.Equal(t, "network error (code 0): connection refused to danbooru.donmai.us", err.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"direct", New(ErrorTypeParsing, 200, "bad json"), ErrorTypeParsing},
		{"wrapped", fmt.Errorf("page 3: %w", New(ErrorTypeServer, 502, "bad gateway")), ErrorTypeServer},
		{"plain", fmt.Errorf("something else"), ErrorTypeUnknown},
		{"nil-ish sentinel", ErrNoResults, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(ErrNoResults))
	assert.True(t, IsTerminal(fmt.Errorf("tags %q: %w", "blue_sky", ErrNothingToDownload)))
	assert.False(t, IsTerminal(New(ErrorTypeNetwork, 0, "timeout")))
	assert.False(t, IsTerminal(nil))
}
