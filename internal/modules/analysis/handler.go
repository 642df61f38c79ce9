package analysis

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Handler struct {
	service  *Service
	markdown goldmark.Markdown
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	reports := rg.Group("/analysis-reports", authMW, middleware.RequireCapability(middleware.CapAnalysisReport))
	{
		reports.POST("/:policeID/generate", h.Generate)
		reports.GET("/:policeID", h.Get)
		reports.GET("/:policeID/html", h.GetHTML)
		reports.PATCH("/:policeID", h.Edit)
		reports.POST("/:policeID/template", h.ApplyTemplate)
	}
}

func (h *Handler) Generate(c *gin.Context) {
	report, err := h.service.Generate(c.Request.Context(), c.Param("policeID"))
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, report)
}

func (h *Handler) Get(c *gin.Context) {
	report, err := h.service.Get(c.Param("policeID"))
	if err != nil {
		if errors.Is(err, ErrNoReport) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, report)
}

// GetHTML renders the display content as HTML for print and archive views.
// The AI writes markdown; everything else passes through as paragraphs.
func (h *Handler) GetHTML(c *gin.Context) {
	report, err := h.service.Get(c.Param("policeID"))
	if err != nil {
		if errors.Is(err, ErrNoReport) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(report.DisplayContent()), &buf); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type editRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, ErrEmptyEdit.Error())
		return
	}

	report, err := h.service.EditManually(c.Param("policeID"), req.Content, middleware.CurrentUsername(c))
	if err != nil {
		if errors.Is(err, ErrNoReport) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, report)
}

type templateRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h *Handler) ApplyTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请选择模板类型")
		return
	}

	report, err := h.service.ApplyTemplate(c.Param("policeID"), req.Kind, middleware.CurrentUsername(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoReport):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrUnknownTemplate):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, report)
}
