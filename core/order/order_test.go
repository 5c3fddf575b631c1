package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", []string{}, []string{}},
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"duplicates dropped silently", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{"first occurrence order kept", []string{"c", "a", "c", "a"}, []string{"c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedupe(tt.in))
		})
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{Status: Paid}
	assert.Equal(t, "order already paid", err.Error())

	err = &InvalidTransitionError{Status: Cancelled}
	assert.Equal(t, "order already cancelled", err.Error())
}
