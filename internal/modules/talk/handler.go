package talk

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/pagination"
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
	talks := rg.Group("/talk-records", authMW, middleware.RequireCapability(middleware.CapTalkEntry))
	{
		talks.POST("", h.Create)
		talks.GET("", h.List)
		talks.GET("/:id", h.Get)
		talks.DELETE("/:id", h.Delete)
	}
}

type createRequest struct {
	models.TalkRecordModel
	// InitialPassword seeds the provisioned account when the officer has
	// never logged in before. Ignored for existing accounts.
	InitialPassword string `json:"initial_password"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	result, err := h.service.Create(&req.TalkRecordModel, req.InitialPassword)
	if err != nil {
		if errors.Is(err, ErrMissingPoliceID) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *Handler) List(c *gin.Context) {
	records, page, err := h.service.List(c.Query("police_id"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, records, page)
}

func (h *Handler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, record)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
