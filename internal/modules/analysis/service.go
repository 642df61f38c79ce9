package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoReport   = errors.New("该民警尚无综合研判报告")
	ErrSuperseded = errors.New("研判结果已被更新的生成请求取代")
	ErrEmptyEdit  = errors.New("修改内容不能为空")
)

// Template kinds that can be applied to a report.
const (
	TemplatePolitics = "politics"
	TemplateWarning  = "warning"
	TemplateCare     = "care"
)

var ErrUnknownTemplate = errors.New("未知的模板类型")

// Template boilerplates. Politics prepends; warning and care append.
const (
	politicsPrefix = "【政治定性】该同志在大是大非面前头脑清醒，政治立场坚定。\n"
	warningSuffix  = "\n\n【风险警示】根据谈话记录，该同志近期社会面交往较为复杂，存在潜在纪律风险，建议加强日常监管。"
	careSuffix     = "\n\n【关怀建议】建议基层党组织发挥作用，针对其面临的实际困难开展精准帮扶，落实组织关爱。"
)

// Service generates and curates the one composite appraisal each officer
// has. Generation is slow (one full AI round trip), so concurrent requests
// for the same officer are resolved by supersession: the newest request wins
// and older in-flight results are discarded when they land.
type Service struct {
	db      *gorm.DB
	gateway *ai.Gateway
	configs *configs.Service
	log     *zap.Logger

	mu     sync.Mutex
	tokens map[string]uint64
}

func NewService(db *gorm.DB, gateway *ai.Gateway, cfgs *configs.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, gateway: gateway, configs: cfgs, log: log, tokens: make(map[string]uint64)}
}

func (s *Service) claimToken(policeID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[policeID]++
	return s.tokens[policeID]
}

// Generate builds a fresh report from everything on file for the officer
// and overwrites any existing one. Manual edits do not survive a
// regeneration. When a newer Generate for the same officer started while
// this one was waiting on the AI, the stale result is dropped and
// ErrSuperseded is returned.
func (s *Service) Generate(ctx context.Context, policeID string) (*models.AnalysisReportModel, error) {
	token := s.claimToken(policeID)

	var info *models.PersonalInfoModel
	var stored models.PersonalInfoModel
	if err := s.db.Where("police_id = ?", policeID).First(&stored).Error; err == nil {
		info = &stored
	}

	var exams []models.ExamReportModel
	if err := s.db.Where("police_id = ?", policeID).Order("created_at asc").Find(&exams).Error; err != nil {
		return nil, err
	}
	examAnalyses := make([]string, 0, len(exams))
	for _, e := range exams {
		examAnalyses = append(examAnalyses, e.Analysis)
	}

	var psychs []models.PsychTestReportModel
	if err := s.db.Where("police_id = ?", policeID).Order("created_at asc").Find(&psychs).Error; err != nil {
		return nil, err
	}
	psychContents := make([]string, 0, len(psychs))
	for _, p := range psychs {
		psychContents = append(psychContents, p.Content)
	}

	var talks []models.TalkRecordModel
	if err := s.db.Where("police_id = ?", policeID).Order("created_at asc").Find(&talks).Error; err != nil {
		return nil, err
	}

	prompt := ai.BuildCompositePrompt(info, examAnalyses, psychContents, talks)
	content := s.gateway.Call(ctx, s.configs.Effective(), prompt, ai.ReportGenerationPrompt)

	// Token check and persist sit in one critical section: a stale result
	// must never land after a newer generation already wrote its report.
	s.mu.Lock()
	if s.tokens[policeID] != token {
		s.mu.Unlock()
		s.log.Info("discarding superseded analysis result", zap.String("police_id", policeID))
		return nil, ErrSuperseded
	}
	report := &models.AnalysisReportModel{
		PoliceID:    policeID,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		AIContent:   content,
		EditStatus:  models.EditStatusAI,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "police_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"generated_at", "ai_content", "manual_edit", "edit_status", "editor_name", "updated_at",
		}),
	}).Create(report).Error
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info("analysis report generated", zap.String("police_id", policeID))
	return s.Get(policeID)
}

// Get fetches the officer's report.
func (s *Service) Get(policeID string) (*models.AnalysisReportModel, error) {
	var report models.AnalysisReportModel
	err := s.db.Where("police_id = ?", policeID).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoReport
		}
		return nil, err
	}
	return &report, nil
}

// EditManually replaces the display text with the supervisor's version. The
// AI content is kept untouched underneath so the provenance stays auditable.
func (s *Service) EditManually(policeID, content, editorName string) (*models.AnalysisReportModel, error) {
	if content == "" {
		return nil, ErrEmptyEdit
	}
	report, err := s.Get(policeID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"manual_edit": content,
		"edit_status": models.EditStatusModified,
		"editor_name": editorName,
	}
	if err := s.db.Model(report).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(policeID)
}

// ApplyTemplate inserts one of the fixed boilerplate blocks into the current
// display text and stores the result as a manual edit.
func (s *Service) ApplyTemplate(policeID, kind, editorName string) (*models.AnalysisReportModel, error) {
	report, err := s.Get(policeID)
	if err != nil {
		return nil, err
	}

	base := report.DisplayContent()
	var edited string
	switch kind {
	case TemplatePolitics:
		edited = politicsPrefix + base
	case TemplateWarning:
		edited = base + warningSuffix
	case TemplateCare:
		edited = base + careSuffix
	default:
		return nil, ErrUnknownTemplate
	}
	return s.EditManually(policeID, edited, editorName)
}
