package form

import (
	"regexp"
	"time"
)

const (
	MsgNameRequired     = "Name is required"
	MsgNamePattern      = "Name must start with a capital letter and contain at least 3 characters"
	MsgEmailRequired    = "e-mail is required"
	MsgEmailPattern     = "Invalid email address. Please enter a valid email"
	MsgCheckInRequired  = "Check-In Date is required"
	MsgCheckOutRequired = "Check-Out Date is required"
	MsgCheckOutOrder    = "The Check-Out Date must be later than the Check-In Date"
)

var (
	// Whitespace in names follows the ECMAScript \s class, not RE2's ASCII one.
	namePattern  = regexp.MustCompile(`^[A-Z][a-zA-Z\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]{2,}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// A rule maps the current values to an error message, or "" when the field
// is valid. deps names the other fields the rule reads.
type rule struct {
	deps  []Field
	check func(Values) string
}

var rules = map[Field]rule{
	FieldUserName:     {check: func(v Values) string { return checkUserName(v.UserName) }},
	FieldEmail:        {check: func(v Values) string { return checkEmail(v.Email) }},
	FieldCheckInDate:  {check: func(v Values) string { return checkCheckIn(v.CheckInDate) }},
	FieldCheckOutDate: {deps: []Field{FieldCheckInDate}, check: func(v Values) string { return checkCheckOut(v.CheckInDate, v.CheckOutDate) }},
	FieldRoomType:     {check: func(Values) string { return "" }},
}

// dependents returns the fields whose rules must re-run when f changes,
// f itself first.
func dependents(f Field) []Field {
	out := []Field{f}
	for _, other := range Fields {
		for _, dep := range rules[other].deps {
			if dep == f {
				out = append(out, other)
			}
		}
	}
	return out
}

func checkUserName(s string) string {
	if s == "" {
		return MsgNameRequired
	}
	if !namePattern.MatchString(s) {
		return MsgNamePattern
	}
	return ""
}

func checkEmail(s string) string {
	if s == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(s) {
		return MsgEmailPattern
	}
	return ""
}

func checkCheckIn(in *time.Time) string {
	if in == nil {
		return MsgCheckInRequired
	}
	return ""
}

// Same-day check-out is rejected: the stay must end strictly after it starts.
func checkCheckOut(in, out *time.Time) string {
	if out == nil {
		return MsgCheckOutRequired
	}
	if in != nil && !out.After(*in) {
		return MsgCheckOutOrder
	}
	return ""
}
