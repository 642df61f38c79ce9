package officer

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
	officers := rg.Group("/officers", authMW, middleware.RequireCapability(middleware.CapPersonalInfo))
	{
		officers.GET("", h.List)
		officers.GET("/:policeID", h.Get)
		officers.PUT("/:policeID", h.Save)
	}
}

// ownRecordOnly restricts OFFICER accounts to the record matching their own
// police id. Supervisory roles see everyone.
func ownRecordOnly(c *gin.Context, policeID string) bool {
	if middleware.CurrentRole(c) != models.RoleOfficer {
		return true
	}
	return middleware.CurrentUsername(c) == policeID
}

func (h *Handler) List(c *gin.Context) {
	if middleware.CurrentRole(c) == models.RoleOfficer {
		response.Forbidden(c)
		return
	}
	infos, err := h.service.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, infos)
}

func (h *Handler) Get(c *gin.Context) {
	policeID := c.Param("policeID")
	if !ownRecordOnly(c, policeID) {
		response.Forbidden(c)
		return
	}

	info, err := h.service.Get(policeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, info)
}

func (h *Handler) Save(c *gin.Context) {
	policeID := c.Param("policeID")
	if !ownRecordOnly(c, policeID) {
		response.Forbidden(c)
		return
	}

	var info models.PersonalInfoModel
	if err := c.ShouldBindJSON(&info); err != nil {
		response.BadRequest(c, "请求参数格式错误")
		return
	}
	info.PoliceID = policeID

	if err := h.service.Save(&info); err != nil {
		if errors.Is(err, ErrMissingPoliceID) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, info)
}
