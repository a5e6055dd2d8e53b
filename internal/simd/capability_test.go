package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISA(t *testing.T) {
	tests := []struct {
		input    string
		expected ISA
		ok       bool
	}{
		{"generic", Generic, true},
		{"sse4", SSE4, true},
		{"SSE4", SSE4, true},
		{"  sse4  ", SSE4, true},
		{"avx2", Generic, false},
		{"", Generic, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			isa, ok := ParseISA(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, isa)
		})
	}
}

func TestISAString(t *testing.T) {
	assert.Equal(t, "generic", Generic.String())
	assert.Equal(t, "sse4", SSE4.String())
	assert.Equal(t, "unknown", ISA(99).String())
}

func TestActiveISA(t *testing.T) {
	isa := ActiveISA()
	assert.True(t, isa == Generic || isa == SSE4)

	// The active ISA must be one the CPU actually supports.
	assert.True(t, isISAAvailable(isa))
}

func TestISAMatchesCompiledKernels(t *testing.T) {
	// SSE4 may only be reported when the asm kernels are compiled in;
	// otherwise the override validation would accept sse4 while every
	// call runs the portable fallback.
	if ActiveISA() == SSE4 || HasSSE41() {
		assert.True(t, Accelerated)
	}

	if !Accelerated {
		assert.Equal(t, Generic, ActiveISA())
		assert.False(t, isISAAvailable(SSE4))
	}
}
