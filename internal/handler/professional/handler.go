package professional

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/service/professional"
	"github.com/turnolab/scheduler-api/pkg/errors"
	"github.com/turnolab/scheduler-api/pkg/httputil"
)

type Handler struct {
	service *professional.Service
}

func NewHandler(service *professional.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	professionals := r.Group("/professionals")
	{
		professionals.POST("", h.CreateProfessional)
		professionals.GET("", h.ListProfessionals)
		professionals.GET("/:id", h.GetProfessional)
	}
}

func (h *Handler) CreateProfessional(c *gin.Context) {
	var req model.CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	professional, err := h.service.CreateProfessional(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, professional)
}

func (h *Handler) GetProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid professional ID", err))
		return
	}

	professional, err := h.service.GetProfessional(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, professional)
}

func (h *Handler) ListProfessionals(c *gin.Context) {
	professionals, err := h.service.ListProfessionals(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, professionals)
}
