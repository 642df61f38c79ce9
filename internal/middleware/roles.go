package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/response"
)

// Capability names one gated area of the product surface.
type Capability string

const (
	CapPersonalInfo    Capability = "personal-info"
	CapExamReports     Capability = "exam-reports"
	CapPsychTest       Capability = "psych-test"
	CapPsychCounseling Capability = "psych-counseling"
	CapTalkEntry       Capability = "talk-entry"
	CapDashboard       Capability = "dashboard"
	CapAnalysisReport  Capability = "analysis-report"
	CapAdminSettings   Capability = "admin-settings"
)

// roleCapabilities is the explicit capability table. Access checks go
// through this table instead of comparing role strings at call sites.
var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleOfficer: {
		CapPersonalInfo: true, CapExamReports: true,
		CapPsychTest: true, CapPsychCounseling: true,
	},
	models.RoleCommander: {
		CapPersonalInfo: true, CapExamReports: true,
		CapPsychTest: true, CapPsychCounseling: true,
		CapTalkEntry: true, CapAnalysisReport: true,
	},
	models.RoleLeader: {
		CapPersonalInfo: true, CapExamReports: true,
		CapPsychTest: true, CapPsychCounseling: true,
		CapDashboard: true, CapAnalysisReport: true,
	},
	models.RoleAdmin: {
		CapAdminSettings: true,
	},
}

// RoleHasCapability consults the capability table.
func RoleHasCapability(r models.Role, cap Capability) bool {
	return roleCapabilities[r][cap]
}

// RequireCapability returns a middleware that rejects requests whose acting
// role lacks the given capability. Must run after Auth.
func RequireCapability(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !RoleHasCapability(CurrentRole(c), cap) {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}
