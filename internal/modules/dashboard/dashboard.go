package dashboard

import (
	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Stats is the leadership overview: headline counts plus the records that
// currently carry a risk flag.
type Stats struct {
	TotalOfficers   int64                    `json:"total_officers"`
	FlaggedOfficers int64                    `json:"flagged_officers"`
	StableOfficers  int64                    `json:"stable_officers"`
	ExamReports     int64                    `json:"exam_reports"`
	PsychReports    int64                    `json:"psych_reports"`
	TalkRecords     int64                    `json:"talk_records"`
	FlaggedRecords  []models.TalkRecordModel `json:"flagged_records"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// riskCondition matches records with any of the eight risk items marked.
const riskCondition = "has_family_conflict OR has_major_change OR has_debt OR " +
	"has_alcohol_issue OR has_relationship_issue OR has_complex_social OR " +
	"is_under_investigation OR has_mental_issue"

// Stats aggregates the overview in one pass. An officer counts as flagged
// when any of their talk records carries a risk item.
func (s *Service) Stats() (*Stats, error) {
	var stats Stats

	if err := s.db.Model(&models.PersonalInfoModel{}).Count(&stats.TotalOfficers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ExamReportModel{}).Count(&stats.ExamReports).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.PsychTestReportModel{}).Count(&stats.PsychReports).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.TalkRecordModel{}).Count(&stats.TalkRecords).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.TalkRecordModel{}).
		Where(riskCondition).
		Distinct("police_id").
		Count(&stats.FlaggedOfficers).Error
	if err != nil {
		return nil, err
	}
	stats.StableOfficers = stats.TotalOfficers - stats.FlaggedOfficers
	if stats.StableOfficers < 0 {
		stats.StableOfficers = 0
	}

	err = s.db.Where(riskCondition).
		Order("created_at desc").
		Find(&stats.FlaggedRecords).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/dashboard/stats", authMW, middleware.RequireCapability(middleware.CapDashboard), h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}
