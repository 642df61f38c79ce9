package exam

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	exams := rg.Group("/exam-reports", authMW, middleware.RequireCapability(middleware.CapExamReports))
	{
		exams.POST("", h.Analyze)
		exams.GET("", h.List)
		exams.GET("/:id", h.Get)
		exams.DELETE("/:id", h.Delete)
	}
}

func scopedPoliceID(c *gin.Context) string {
	if middleware.CurrentRole(c) == models.RoleOfficer {
		return middleware.CurrentUsername(c)
	}
	if id := c.Query("police_id"); id != "" {
		return id
	}
	return middleware.CurrentUsername(c)
}

type analyzeRequest struct {
	FileName string `json:"file_name"`
	Content  string `json:"content" binding:"required"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供体检数据内容")
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), scopedPoliceID(c), req.FileName, req.Content)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, report)
}

func (h *Handler) List(c *gin.Context) {
	reports, err := h.service.List(scopedPoliceID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, reports)
}

func (h *Handler) Get(c *gin.Context) {
	report, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	if middleware.CurrentRole(c) == models.RoleOfficer && report.PoliceID != middleware.CurrentUsername(c) {
		response.Forbidden(c)
		return
	}
	response.OK(c, report)
}

func (h *Handler) Delete(c *gin.Context) {
	report, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	if middleware.CurrentRole(c) == models.RoleOfficer && report.PoliceID != middleware.CurrentUsername(c) {
		response.Forbidden(c)
		return
	}

	if err := h.service.Delete(report.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
