package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCoursePublished   EventType = "course.published"
	EventEnrollmentCreated EventType = "enrollment.created"
	EventAttemptCompleted  EventType = "attempt.completed"
	EventPaymentCompleted  EventType = "payment.completed"
	EventCertificateIssued EventType = "certificate.issued"
)

const eventVersion = "1.0"

// Event is the envelope published for every domain event.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

func newEvent(eventType EventType, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "lms-service",
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func NewCoursePublishedEvent(courseID uint, title, publishedBy string) *Event {
	return newEvent(EventCoursePublished, map[string]interface{}{
		"course_id":    courseID,
		"title":        title,
		"published_by": publishedBy,
	})
}

func NewEnrollmentCreatedEvent(enrollmentID, courseID uint, userID string, source string) *Event {
	return newEvent(EventEnrollmentCreated, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"course_id":     courseID,
		"user_id":       userID,
		"source":        source,
	})
}

func NewAttemptCompletedEvent(attemptID, quizID uint, userID string, score, maxScore float64) *Event {
	return newEvent(EventAttemptCompleted, map[string]interface{}{
		"attempt_id": attemptID,
		"quiz_id":    quizID,
		"user_id":    userID,
		"score":      score,
		"max_score":  maxScore,
	})
}

func NewPaymentCompletedEvent(paymentID, courseID uint, userID, intentID string, amount int, currency string) *Event {
	return newEvent(EventPaymentCompleted, map[string]interface{}{
		"payment_id": paymentID,
		"course_id":  courseID,
		"user_id":    userID,
		"intent_id":  intentID,
		"amount":     amount,
		"currency":   currency,
	})
}

func NewCertificateIssuedEvent(certificateID, enrollmentID uint, serialNumber string) *Event {
	return newEvent(EventCertificateIssued, map[string]interface{}{
		"certificate_id": certificateID,
		"enrollment_id":  enrollmentID,
		"serial_number":  serialNumber,
	})
}
