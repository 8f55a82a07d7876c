package kanban

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marineworks/internal/domain"
	"marineworks/internal/middleware"
	"marineworks/internal/pkg/response"
	"marineworks/internal/pkg/validator"
)

type MoveRequest struct {
	WorkOrderID string                 `json:"workOrderId" validate:"required"`
	To          domain.WorkOrderStatus `json:"to" validate:"required"`
}

type ConfirmMoveRequest struct {
	Note string `json:"note"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	board := r.Group("/kanban")
	{
		board.GET("/board", h.Board)
		board.POST("/moves", h.Move)
		board.POST("/moves/:token/confirm", h.ConfirmMove)
		board.DELETE("/moves/:token", h.CancelMove)
	}
}

func (h *Handler) Board(c *gin.Context) {
	filter := Filter{
		Query:    c.Query("q"),
		Priority: domain.WorkOrderPriority(c.Query("priority")),
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority filter")
		return
	}
	board, err := h.service.Board(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, board)
}

func (h *Handler) Move(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "workOrderId and to are required")
		return
	}

	result, err := h.service.Move(c.Request.Context(), req.WorkOrderID, req.To, middleware.ActorUID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) ConfirmMove(c *gin.Context) {
	var req ConfirmMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	result, err := h.service.ConfirmMove(c.Request.Context(), c.Param("token"), req.Note, middleware.ActorUID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) CancelMove(c *gin.Context) {
	h.service.CancelMove(c.Param("token"))
	c.Status(http.StatusNoContent)
}
