package bookingform

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookingform/internal/domain"
	"bookingform/internal/form"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type formData struct {
	Form StateResponse `json:"form"`
}

type MockSubmissionReader struct {
	mock.Mock
}

func (m *MockSubmissionReader) ListByForm(ctx context.Context, formID string) ([]domain.Submission, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockSubmissionReader) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func setupRouter(t *testing.T, gw form.Gateway, opts ...Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(gw, time.Hour, append([]Option{WithClock(fixedNow)}, opts...)...)
	t.Cleanup(svc.Close)
	h := NewHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1)
	h.RegisterInternalRoutes(v1.Group("/internal"))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createForm(t *testing.T, r http.Handler) StateResponse {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/forms", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var data formData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Form
}

func setField(t *testing.T, r http.Handler, id string, f form.Field, v any) StateResponse {
	t.Helper()
	w, env := do(t, r, http.MethodPatch, "/api/v1/forms/"+id+"/fields/"+string(f), gin.H{"value": v})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data formData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Form
}

func TestHandler_ListRoomTypes(t *testing.T) {
	r := setupRouter(t, nil)
	w, env := do(t, r, http.MethodGet, "/api/v1/room-types", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"luxury"`)
}

func TestHandler_FullBookingFlow(t *testing.T) {
	gw := new(MockGateway)
	want := form.Payload{
		UserName:     "Alice",
		Email:        "alice@example.com",
		RoomType:     form.RoomLuxury,
		CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	gw.On("Send", mock.Anything, want).Return(nil).Once()
	r := setupRouter(t, gw)

	st := createForm(t, r)
	assert.False(t, st.Valid)
	assert.Empty(t, st.Errors)
	require.NotNil(t, st.Values.CheckInDate)
	assert.Equal(t, "2024-05-20", *st.Values.CheckInDate)

	setField(t, r, st.ID, form.FieldUserName, "Alice")
	setField(t, r, st.ID, form.FieldEmail, "alice@example.com")
	setField(t, r, st.ID, form.FieldCheckInDate, "2024-06-01")
	setField(t, r, st.ID, form.FieldCheckOutDate, "2024-06-05")
	st = setField(t, r, st.ID, form.FieldRoomType, "luxury")
	assert.True(t, st.Valid)
	assert.Empty(t, st.Errors)

	w, env := do(t, r, http.MethodPost, "/api/v1/forms/"+st.ID+"/submit", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var res SubmitResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 4, res.Payload.Nights)
	assert.Equal(t, "2024-06-05", res.Payload.CheckOutDate)
	assert.Equal(t, 1, res.State.Submissions)
	assert.Equal(t, "Alice", res.State.Values.UserName)
	gw.AssertExpectations(t)
}

func TestHandler_SubmitInvalidForm(t *testing.T) {
	gw := new(MockGateway)
	r := setupRouter(t, gw)
	st := createForm(t, r)
	setField(t, r, st.ID, form.FieldUserName, "alice")

	w, env := do(t, r, http.MethodPost, "/api/v1/forms/"+st.ID+"/submit", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORM_INVALID", env.Error.Code)

	var details formData
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, form.MsgNamePattern, details.Form.Errors[form.FieldUserName])
	assert.Equal(t, form.MsgEmailRequired, details.Form.Errors[form.FieldEmail])
	assert.Equal(t, form.MsgCheckOutRequired, details.Form.Errors[form.FieldCheckOutDate])
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandler_EqualDatesRejected(t *testing.T) {
	r := setupRouter(t, nil)
	st := createForm(t, r)

	setField(t, r, st.ID, form.FieldCheckInDate, "2024-06-05")
	st = setField(t, r, st.ID, form.FieldCheckOutDate, "2024-06-05")

	assert.Equal(t, form.MsgCheckOutOrder, st.Errors[form.FieldCheckOutDate])
}

func TestHandler_BadEmail(t *testing.T) {
	r := setupRouter(t, nil)
	st := createForm(t, r)

	st = setField(t, r, st.ID, form.FieldEmail, "bob@@x")

	assert.Equal(t, form.MsgEmailPattern, st.Errors[form.FieldEmail])
}

func TestHandler_Errors(t *testing.T) {
	r := setupRouter(t, nil)
	st := createForm(t, r)

	w, env := do(t, r, http.MethodGet, "/api/v1/forms/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FORM_NOT_FOUND", env.Error.Code)

	w, env = do(t, r, http.MethodPatch, "/api/v1/forms/"+st.ID+"/fields/checkOutDate", gin.H{"value": "05/06/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/v1/forms/"+st.ID+"/fields/nickname", gin.H{"value": "x"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/forms/"+st.ID+"/pickers/roomType/open", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_PickerDismissKeepsValue(t *testing.T) {
	r := setupRouter(t, nil)
	st := createForm(t, r)
	setField(t, r, st.ID, form.FieldCheckOutDate, "2024-06-05")

	w, _ := do(t, r, http.MethodPost, "/api/v1/forms/"+st.ID+"/pickers/checkOutDate/open", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/v1/forms/"+st.ID+"/pickers/checkOutDate", gin.H{"dismissed": true})
	require.Equal(t, http.StatusOK, w.Code)

	var data formData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Form.Values.CheckOutDate)
	assert.Equal(t, "2024-06-05", *data.Form.Values.CheckOutDate)
	assert.Empty(t, data.Form.OpenPickers)
}

func TestHandler_DiscardForm(t *testing.T) {
	r := setupRouter(t, nil)
	st := createForm(t, r)

	w, _ := do(t, r, http.MethodDelete, "/api/v1/forms/"+st.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/forms/"+st.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Submissions(t *testing.T) {
	reader := new(MockSubmissionReader)
	reader.On("ListRecent", mock.Anything, 5).Return([]domain.Submission{{ID: 1, FormID: "f1", Attempt: 1}}, nil)
	r := setupRouter(t, nil, WithSubmissions(reader))

	w, env := do(t, r, http.MethodGet, "/api/v1/internal/submissions?limit=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"form_id":"f1"`)
	reader.AssertExpectations(t)
}

func TestHandler_SubmissionsDisabled(t *testing.T) {
	r := setupRouter(t, nil)

	w, env := do(t, r, http.MethodGet, "/api/v1/internal/submissions", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "OUTBOX_DISABLED", env.Error.Code)
}
