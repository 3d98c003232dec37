package bookingform

import (
	"encoding/json"

	"bookingform/internal/form"
)

type SetFieldRequest struct {
	Value json.RawMessage `json:"value"`
}

// PickerRequest carries what a date picker reported when it closed.
type PickerRequest struct {
	Date      string `json:"date"`
	Dismissed bool   `json:"dismissed"`
}

type ValuesResponse struct {
	UserName     string        `json:"userName"`
	Email        string        `json:"email"`
	CheckInDate  *string       `json:"checkInDate"`
	CheckOutDate *string       `json:"checkOutDate"`
	RoomType     form.RoomType `json:"roomType"`
}

type StateResponse struct {
	ID          string                `json:"id"`
	Values      ValuesResponse        `json:"values"`
	Errors      map[form.Field]string `json:"errors"`
	Valid       bool                  `json:"valid"`
	Submissions int                   `json:"submissions"`
	OpenPickers []form.Field          `json:"open_pickers,omitempty"`
}

type RoomTypeOption struct {
	Value form.RoomType `json:"value"`
	Label string        `json:"label"`
}

type SubmitResponse struct {
	State   StateResponse  `json:"state"`
	Payload PayloadSummary `json:"payload"`
}

type PayloadSummary struct {
	UserName     string        `json:"userName"`
	Email        string        `json:"email"`
	RoomType     form.RoomType `json:"roomType"`
	CheckInDate  string        `json:"checkInDate"`
	CheckOutDate string        `json:"checkOutDate"`
	Nights       int           `json:"nights"`
}

func toStateResponse(id string, st form.State) StateResponse {
	return StateResponse{
		ID: id,
		Values: ValuesResponse{
			UserName:     st.Values.UserName,
			Email:        st.Values.Email,
			CheckInDate:  formatDay(st.Values.CheckInDate),
			CheckOutDate: formatDay(st.Values.CheckOutDate),
			RoomType:     st.Values.RoomType,
		},
		Errors:      st.Errors,
		Valid:       st.Valid,
		Submissions: st.Submissions,
		OpenPickers: st.OpenPickers,
	}
}

func toPayloadSummary(p form.Payload) PayloadSummary {
	return PayloadSummary{
		UserName:     p.UserName,
		Email:        p.Email,
		RoomType:     p.RoomType,
		CheckInDate:  p.CheckInDate.Format(form.DateLayout),
		CheckOutDate: p.CheckOutDate.Format(form.DateLayout),
		Nights:       p.Nights(),
	}
}
