package reference

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marineworks/internal/domain"
	"marineworks/internal/pkg/response"
	"marineworks/internal/pkg/validator"
	"marineworks/internal/repository"
)

// Handler serves the thin reference collections: clients, vessels and
// equipment. Plain keyed CRUD, no lifecycle rules, no cascading deletes.
type Handler struct {
	clients   *repository.ClientRepository
	vessels   *repository.VesselRepository
	equipment *repository.EquipmentRepository
}

func NewHandler(clients *repository.ClientRepository, vessels *repository.VesselRepository, equipment *repository.EquipmentRepository) *Handler {
	return &Handler{clients: clients, vessels: vessels, equipment: equipment}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.PATCH("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
	vessels := r.Group("/vessels")
	{
		vessels.POST("", h.CreateVessel)
		vessels.GET("", h.ListVessels)
		vessels.PATCH("/:id", h.UpdateVessel)
		vessels.DELETE("/:id", h.DeleteVessel)
	}
	equipment := r.Group("/equipment")
	{
		equipment.POST("", h.CreateEquipment)
		equipment.GET("", h.ListEquipment)
		equipment.PATCH("/:id", h.UpdateEquipment)
		equipment.DELETE("/:id", h.DeleteEquipment)
	}
}

func (h *Handler) CreateClient(c *gin.Context) {
	var client domain.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&client); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required")
		return
	}
	if _, err := h.clients.Create(c.Request.Context(), &client); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, client)
}

func (h *Handler) ListClients(c *gin.Context) {
	list, err := h.clients.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []domain.Client{}
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	partial, ok := bindPartial(c)
	if !ok {
		return
	}
	if err := h.clients.Update(c.Request.Context(), c.Param("id"), partial); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": c.Param("id")})
}

func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) CreateVessel(c *gin.Context) {
	var vessel domain.Vessel
	if err := c.ShouldBindJSON(&vessel); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&vessel); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "clientId and name are required")
		return
	}
	if _, err := h.vessels.Create(c.Request.Context(), &vessel); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, vessel)
}

func (h *Handler) ListVessels(c *gin.Context) {
	list, err := h.vessels.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []domain.Vessel{}
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateVessel(c *gin.Context) {
	partial, ok := bindPartial(c)
	if !ok {
		return
	}
	if err := h.vessels.Update(c.Request.Context(), c.Param("id"), partial); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": c.Param("id")})
}

func (h *Handler) DeleteVessel(c *gin.Context) {
	if err := h.vessels.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var eq domain.Equipment
	if err := c.ShouldBindJSON(&eq); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&eq); errs != nil {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "clientId and name are required")
		return
	}
	if _, err := h.equipment.Create(c.Request.Context(), &eq); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, eq)
}

func (h *Handler) ListEquipment(c *gin.Context) {
	list, err := h.equipment.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []domain.Equipment{}
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	partial, ok := bindPartial(c)
	if !ok {
		return
	}
	if err := h.equipment.Update(c.Request.Context(), c.Param("id"), partial); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": c.Param("id")})
}

func (h *Handler) DeleteEquipment(c *gin.Context) {
	if err := h.equipment.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func bindPartial(c *gin.Context) (map[string]any, bool) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return nil, false
	}
	return partial, true
}
