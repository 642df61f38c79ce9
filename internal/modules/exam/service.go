package exam

import (
	"context"
	"strings"
	"time"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// historySeparator joins prior analyses into the history block of the prompt.
const historySeparator = "\n---\n"

type Service struct {
	db      *gorm.DB
	gateway *ai.Gateway
	configs *configs.Service
	log     *zap.Logger
}

func NewService(db *gorm.DB, gateway *ai.Gateway, cfgs *configs.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, gateway: gateway, configs: cfgs, log: log}
}

// Analyze runs one physical-exam analysis and stores it. Earlier analyses
// for the same officer feed the prompt as history, oldest first. The record
// is created even when the chain is down: the stored analysis is then the
// gateway's diagnostic text, which is what the product shows.
func (s *Service) Analyze(ctx context.Context, policeID, fileName, content string) (*models.ExamReportModel, error) {
	var prior []models.ExamReportModel
	err := s.db.Where("police_id = ?", policeID).Order("created_at asc").Find(&prior).Error
	if err != nil {
		return nil, err
	}

	history := make([]string, 0, len(prior))
	for _, p := range prior {
		if p.Analysis != "" {
			history = append(history, p.Analysis)
		}
	}

	prompt := ai.BuildExamPrompt(content, strings.Join(history, historySeparator))
	analysis := s.gateway.Call(ctx, s.configs.Effective(), prompt, ai.ExamSystemInstruction)

	report := &models.ExamReportModel{
		PoliceID: policeID,
		Date:     time.Now().Format("2006-01-02"),
		FileName: fileName,
		Analysis: analysis,
		Status:   models.ExamStatusCompleted,
	}
	if err := s.db.Create(report).Error; err != nil {
		return nil, err
	}
	s.log.Info("exam report analyzed",
		zap.String("police_id", policeID), zap.String("report_id", report.ID))
	return report, nil
}

// List returns an officer's exam reports, newest first.
func (s *Service) List(policeID string) ([]models.ExamReportModel, error) {
	var reports []models.ExamReportModel
	err := s.db.Where("police_id = ?", policeID).Order("created_at desc").Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Get fetches one report by id.
func (s *Service) Get(id string) (*models.ExamReportModel, error) {
	var report models.ExamReportModel
	if err := s.db.Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// Delete removes one report. Reports are immutable otherwise.
func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.ExamReportModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
