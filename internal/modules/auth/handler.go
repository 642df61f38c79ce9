package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/identity", h.AssumeIdentity)
		auth.POST("/logout", authMW, h.Logout)
		auth.GET("/me", authMW, h.Me)
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请输入用户名和密码")
		return
	}

	result, err := h.service.Login(req.Username, req.Password, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok": 0, "code": http.StatusUnauthorized, "message": ErrBadCredentials.Error(),
			})
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

type identityRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Identity string `json:"identity" binding:"required"`
}

func (h *Handler) AssumeIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	result, err := h.service.AssumeIdentity(req.Username, req.Password, models.Role(req.Identity), c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadCredentials):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok": 0, "code": http.StatusUnauthorized, "message": ErrBadCredentials.Error(),
			})
		case errors.Is(err, ErrIdentityInvalid), errors.Is(err, ErrNotMultiRole):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// Me echoes the acting identity so the client can rebuild its menu after a
// page reload.
func (h *Handler) Me(c *gin.Context) {
	role := middleware.CurrentRole(c)
	response.OK(c, gin.H{
		"username":      middleware.CurrentUsername(c),
		"role":          role,
		"landing_route": LandingRoute(role),
	})
}
