package counsel

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	counsel := rg.Group("/counseling", authMW, middleware.RequireCapability(middleware.CapPsychCounseling))
	{
		counsel.POST("/open", h.Open)
		counsel.POST("/message", h.Message)
		counsel.DELETE("/session", h.Close)
	}
}

func (h *Handler) Open(c *gin.Context) {
	result := h.service.Open(c.Request.Context(), middleware.CurrentUsername(c))
	response.OK(c, result)
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) Message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "消息内容不能为空")
		return
	}

	result, err := h.service.Message(c.Request.Context(), middleware.CurrentUsername(c), req.Text)
	if err != nil {
		if errors.Is(err, ErrNotOpened) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) Close(c *gin.Context) {
	h.service.Close(middleware.CurrentUsername(c))
	response.NoContent(c)
}
