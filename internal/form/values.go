package form

import "time"

// Values is the current content of a form instance.
type Values struct {
	UserName     string     `json:"userName"`
	Email        string     `json:"email"`
	CheckInDate  *time.Time `json:"checkInDate"`
	CheckOutDate *time.Time `json:"checkOutDate"`
	RoomType     RoomType   `json:"roomType"`
}

func (v Values) clone() Values {
	v.CheckInDate = cloneTime(v.CheckInDate)
	v.CheckOutDate = cloneTime(v.CheckOutDate)
	return v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Payload is the finalized booking handed to the submission gateway. It is
// only built from a fully valid form and is passed by value.
type Payload struct {
	UserName     string    `json:"userName" validate:"required"`
	Email        string    `json:"email" validate:"required"`
	RoomType     RoomType  `json:"roomType" validate:"required,oneof=standard luxury family"`
	CheckInDate  time.Time `json:"checkInDate" validate:"required"`
	CheckOutDate time.Time `json:"checkOutDate" validate:"required,gtfield=CheckInDate"`
}

// Nights is the length of the stay in days.
func (p Payload) Nights() int {
	return int(p.CheckOutDate.Sub(p.CheckInDate).Hours() / 24)
}

// State is a read-only snapshot for observers rendering the form.
type State struct {
	Values Values
	// Errors holds messages for invalid fields the user has already seen:
	// touched fields, or every field once a submit was attempted.
	Errors      map[Field]string
	Valid       bool
	Submissions int
	OpenPickers []Field
}
