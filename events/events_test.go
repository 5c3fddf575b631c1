package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderPaid(t *testing.T) {
	evt, err := NewOrderPaid("ord-1", "usr-1", []string{"c1", "c2"}, 150)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, TypeOrderPaid, evt.Type)
	assert.False(t, evt.OccurredAt.IsZero())

	var p OrderPaid
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, "ord-1", p.OrderID)
	assert.Equal(t, "usr-1", p.UserID)
	assert.Equal(t, []string{"c1", "c2"}, p.CourseIDs)
	assert.Equal(t, 150, p.TotalPrice)
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	a, err := NewEnrollmentGranted("u", "c")
	require.NoError(t, err)
	b, err := NewEnrollmentGranted("u", "c")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
