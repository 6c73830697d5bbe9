package block

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/service/block"
)

type Handler struct {
	service *block.Service
}

func NewHandler(service *block.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	blocks := r.Group("/calendar-blocks")
	{
		blocks.POST("", h.ImportBlock)
		blocks.GET("", h.ListBlocks)
	}
}

func (h *Handler) ImportBlock(c *gin.Context) {
	var req model.ImportCalendarBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	blk, err := h.service.Import(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": blk})
}

func (h *Handler) ListBlocks(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Query("professional_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid professional ID"})
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid start, expected RFC3339"})
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid end, expected RFC3339"})
		return
	}

	blocks, err := h.service.List(c.Request.Context(), professionalID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": blocks})
}
