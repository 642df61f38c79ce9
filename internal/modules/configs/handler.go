package configs

import (
	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/config"
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
	admin := rg.Group("/admin/config", authMW, middleware.RequireCapability(middleware.CapAdminSettings))
	{
		admin.GET("", h.Get)
		admin.PUT("", h.Update)
		admin.DELETE("", h.Reset)
	}
}

type configView struct {
	OpenRouterKeyMasked string `json:"openrouter_key_masked"`
	PreferredModel      string `json:"preferred_model"`
	APIBaseURL          string `json:"api_base_url"`
	Persisted           bool   `json:"persisted"`
}

func maskKey(key string) string {
	if len(key) <= 14 {
		return key
	}
	return key[:10] + "****" + key[len(key)-4:]
}

// Get returns the effective settings with the key masked. The full key is
// write-only through this surface.
func (h *Handler) Get(c *gin.Context) {
	eff := h.service.Effective()
	response.OK(c, configView{
		OpenRouterKeyMasked: maskKey(eff.OpenRouterKey),
		PreferredModel:      eff.PreferredModel,
		APIBaseURL:          eff.APIBaseURL,
		Persisted:           h.service.Persisted() != nil,
	})
}

type updateRequest struct {
	OpenRouterKey  string `json:"openrouter_key"`
	PreferredModel string `json:"preferred_model"`
	APIBaseURL     string `json:"api_base_url"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	saved, err := h.service.Update(config.SystemConfig{
		OpenRouterKey:  req.OpenRouterKey,
		PreferredModel: req.PreferredModel,
		APIBaseURL:     req.APIBaseURL,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, configView{
		OpenRouterKeyMasked: maskKey(saved.OpenRouterKey),
		PreferredModel:      saved.PreferredModel,
		APIBaseURL:          saved.APIBaseURL,
		Persisted:           true,
	})
}

func (h *Handler) Reset(c *gin.Context) {
	if err := h.service.Reset(); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
