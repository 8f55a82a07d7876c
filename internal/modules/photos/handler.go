package photos

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"marineworks/internal/domain"
	"marineworks/internal/middleware"
	"marineworks/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	wo := r.Group("/work-orders/:id/photos")
	{
		wo.POST("", h.Upload)
		wo.DELETE("/:photoId", h.Delete)
	}
}

// Upload accepts one or more files under the "photos" form field.
// Files process sequentially; on a mid-batch failure the earlier
// uploads stay committed and the response names the file that broke.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "no photos in request")
		return
	}

	uploaded, err := h.service.UploadAll(c.Request.Context(), c.Param("id"), files, middleware.ActorUID(c))
	if err != nil {
		if len(uploaded) > 0 {
			response.Error(c, http.StatusInternalServerError, "PARTIAL_FAILURE",
				fmt.Sprintf("%d of %d photos uploaded: %v", len(uploaded), len(files), err))
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, uploaded)
}

func (h *Handler) Delete(c *gin.Context) {
	workOrderID := c.Param("id")
	wo, err := h.service.workOrders.Get(c.Request.Context(), workOrderID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	photo, ok := wo.Photos[c.Param("photoId")]
	if !ok {
		response.FromError(c, fmt.Errorf("photo %s: %w", c.Param("photoId"), domain.ErrNotFound))
		return
	}

	if err := h.service.Delete(c.Request.Context(), workOrderID, photo); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": photo.ID})
}
