package domain

import "time"

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionDelivered SubmissionStatus = "delivered"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission is one payload handed to the submission gateway. FormID and
// Attempt identify which submit of which form session produced it.
type Submission struct {
	ID           int64            `json:"id" gorm:"primaryKey"`
	FormID       string           `json:"form_id" gorm:"size:64;not null;uniqueIndex:idx_submission_attempt"`
	Attempt      int              `json:"attempt" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	UserName     string           `json:"user_name" gorm:"not null"`
	Email        string           `json:"email" gorm:"not null"`
	RoomType     string           `json:"room_type" gorm:"size:16;not null"`
	CheckInDate  time.Time        `json:"check_in_date"`
	CheckOutDate time.Time        `json:"check_out_date"`
	Status       SubmissionStatus `json:"status" gorm:"size:16;not null;default:pending"`
	Error        string           `json:"error,omitempty" gorm:"type:text"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeliveredAt  *time.Time       `json:"delivered_at,omitempty"`
}
