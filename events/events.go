package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderPaid         = "order.paid"
	TypeEnrollmentGranted = "enrollment.granted"
)

// Envelope wraps every domain event published by the service. Type doubles
// as the routing key on the topic exchange.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type OrderPaid struct {
	OrderID    string   `json:"orderId"`
	UserID     string   `json:"userId"`
	CourseIDs  []string `json:"courseIds"`
	TotalPrice int      `json:"totalPrice"`
}

type EnrollmentGranted struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}

func newEnvelope(eventType string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshalling %s payload: %w", eventType, err)
	}

	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

func NewOrderPaid(orderID string, userID string, courseIDs []string, total int) (Envelope, error) {
	return newEnvelope(TypeOrderPaid, OrderPaid{
		OrderID:    orderID,
		UserID:     userID,
		CourseIDs:  courseIDs,
		TotalPrice: total,
	})
}

func NewEnrollmentGranted(userID string, courseID string) (Envelope, error) {
	return newEnvelope(TypeEnrollmentGranted, EnrollmentGranted{
		UserID:   userID,
		CourseID: courseID,
	})
}
