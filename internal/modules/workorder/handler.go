package workorder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marineworks/internal/domain"
	"marineworks/internal/middleware"
	"marineworks/internal/pkg/response"
	"marineworks/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	wo := r.Group("/work-orders")
	{
		wo.POST("", h.Create)
		wo.GET("", h.List)
		wo.GET("/:id", h.Get)
		wo.PATCH("/:id", h.Update)
		wo.DELETE("/:id", h.Delete)
		wo.POST("/:id/transition", h.Transition)
		wo.GET("/:id/history", h.History)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "clientId and reportedDefect are required")
		return
	}

	wo := req.toDomain()
	wo.CreatedBy = middleware.ActorUID(c)
	if _, err := h.service.Create(c.Request.Context(), wo); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, wo)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	wo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, wo)
}

func (h *Handler) Update(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), partial); err != nil {
		response.FromError(c, err)
		return
	}
	wo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, wo)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// Transition is a guarded entry point: preconditions are checked here,
// before the engine runs, the same way the board does it.
func (h *Handler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "target status is required")
		return
	}

	id := c.Param("id")
	wo, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := CheckGuards(wo, req.To, req.Note); err != nil {
		response.FromError(c, err)
		return
	}

	ev, err := h.service.Transition(c.Request.Context(), id, req.To, req.Note, middleware.ActorUID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ev)
}

func (h *Handler) History(c *gin.Context) {
	descending := c.DefaultQuery("order", "asc") == "desc"
	events, err := h.service.History(c.Request.Context(), c.Param("id"), descending)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if events == nil {
		events = []domain.StatusEvent{}
	}
	response.Success(c, http.StatusOK, events)
}

func (r *CreateWorkOrderRequest) toDomain() *domain.WorkOrder {
	return &domain.WorkOrder{
		ClientID:       r.ClientID,
		VesselID:       r.VesselID,
		EquipmentID:    r.EquipmentID,
		AssigneeUID:    r.AssigneeUID,
		ReportedDefect: r.ReportedDefect,
		ServiceReport:  r.ServiceReport,
		Priority:       r.Priority,
		Status:         r.Status,
	}
}
