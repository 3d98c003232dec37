package bookingform

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookingform/internal/form"
	"bookingform/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/room-types", h.ListRoomTypes)

	forms := rg.Group("/forms")
	{
		forms.POST("", h.CreateForm)
		forms.GET("/:id", h.GetForm)
		forms.DELETE("/:id", h.DiscardForm)
		forms.PATCH("/:id/fields/:field", h.SetField)
		forms.POST("/:id/pickers/:field/open", h.OpenPicker)
		forms.POST("/:id/pickers/:field", h.ClosePicker)
		forms.POST("/:id/submit", h.Submit)
	}
}

// RegisterInternalRoutes mounts operator endpoints; guard rg with a token.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions", h.ListSubmissions)
	rg.GET("/forms/:id/submissions", h.ListFormSubmissions)
}

func (h *Handler) ListRoomTypes(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"room_types": RoomTypeOptions()})
}

func (h *Handler) CreateForm(c *gin.Context) {
	id, st := h.service.Create()
	response.Success(c, http.StatusCreated, gin.H{"form": toStateResponse(id, st)})
}

func (h *Handler) GetForm(c *gin.Context) {
	id := c.Param("id")
	st, err := h.service.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"form": toStateResponse(id, st)})
}

func (h *Handler) DiscardForm(c *gin.Context) {
	if err := h.service.Discard(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetField(c *gin.Context) {
	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	st, err := h.service.SetField(id, form.Field(c.Param("field")), req.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"form": toStateResponse(id, st)})
}

func (h *Handler) OpenPicker(c *gin.Context) {
	id := c.Param("id")
	st, err := h.service.OpenPicker(id, form.Field(c.Param("field")))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"form": toStateResponse(id, st)})
}

func (h *Handler) ClosePicker(c *gin.Context) {
	var req PickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	st, err := h.service.ClosePicker(id, form.Field(c.Param("field")), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"form": toStateResponse(id, st)})
}

func (h *Handler) Submit(c *gin.Context) {
	id := c.Param("id")
	p, st, err := h.service.Submit(c.Request.Context(), id)
	if errors.Is(err, form.ErrFormInvalid) {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "FORM_INVALID",
			"Please correct the highlighted fields", gin.H{"form": toStateResponse(id, st)})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, SubmitResponse{
		State:   toStateResponse(id, st),
		Payload: toPayloadSummary(p),
	})
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows, err := h.service.RecentSubmissions(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}

func (h *Handler) ListFormSubmissions(c *gin.Context) {
	rows, err := h.service.FormSubmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(c, "FORM_NOT_FOUND", "Form session not found or expired")
	case errors.Is(err, ErrBadValue), errors.Is(err, form.ErrValueType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, form.ErrNotDateField):
		response.BadRequest(c, "Field has no date picker")
	case errors.Is(err, ErrOutboxDisabled):
		response.Error(c, http.StatusServiceUnavailable, "OUTBOX_DISABLED", "Submission outbox is disabled")
	default:
		_ = c.Error(err)
		response.Internal(c, "Failed to process form")
	}
}
