package psych

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
	psych := rg.Group("/psych-test", authMW, middleware.RequireCapability(middleware.CapPsychTest))
	{
		psych.POST("/start", h.Start)
		psych.POST("/message", h.Message)
		psych.GET("/state", h.State)
		psych.GET("/reports", h.Reports)
	}
}

type startRequest struct {
	OfficerName string `json:"officer_name"`
}

func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	_ = c.ShouldBindJSON(&req)

	result := h.service.Start(middleware.CurrentUsername(c), req.OfficerName)
	response.OK(c, result)
}

type messageRequest struct {
	OfficerName string `json:"officer_name"`
	Text        string `json:"text" binding:"required"`
}

func (h *Handler) Message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, ErrEmptyMessage.Error())
		return
	}

	result, err := h.service.Message(c.Request.Context(), middleware.CurrentUsername(c), req.OfficerName, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotStarted), errors.Is(err, ErrAlreadyFinished), errors.Is(err, ErrReplyPending):
			response.Conflict(c, err.Error())
		case errors.Is(err, ErrEmptyMessage):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

func (h *Handler) State(c *gin.Context) {
	phase, round := h.service.State(middleware.CurrentUsername(c))
	response.OK(c, gin.H{"phase": phase, "round": round, "total_rounds": TotalRounds})
}

func (h *Handler) Reports(c *gin.Context) {
	reports, err := h.service.Reports(middleware.CurrentUsername(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, reports)
}
