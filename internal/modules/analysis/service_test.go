package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"github.com/jingxin-guardian/core/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type blockingProvider struct {
	mu      sync.Mutex
	replies []string
	calls   int
	seen    []ai.Request
	entered chan struct{}
	gate    chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Generate(_ context.Context, req ai.Request) (string, error) {
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, req)
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return reply, nil
}

func newService(t *testing.T, provider ai.Provider) (*Service, *gorm.DB) {
	db := testutil.NewDB(t,
		&models.AnalysisReportModel{}, &models.PersonalInfoModel{},
		&models.ExamReportModel{}, &models.PsychTestReportModel{},
		&models.TalkRecordModel{}, &models.OptionModel{})
	gateway := ai.NewGatewayWithProviders(nil, provider)
	return NewService(db, gateway, configs.NewService(db, nil), nil), db
}

func seedRecords(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.PersonalInfoModel{
		PoliceID: "110234", Name: "张伟", Department: "特警支队",
	}).Error)
	require.NoError(t, db.Create(&models.ExamReportModel{
		PoliceID: "110234", Analysis: "血压偏高，建议复查",
	}).Error)
	require.NoError(t, db.Create(&models.PsychTestReportModel{
		PoliceID: "110234", Content: "心理底色总体平稳",
	}).Error)
	require.NoError(t, db.Create(&models.TalkRecordModel{
		PoliceID: "110234", OfficerName: "张伟", HasDebt: true,
	}).Error)
}

func TestGenerateGathersAllRecords(t *testing.T) {
	provider := &blockingProvider{replies: []string{"综合研判：总体可控。"}}
	s, db := newService(t, provider)
	seedRecords(t, db)

	report, err := s.Generate(context.Background(), "110234")
	require.NoError(t, err)
	assert.Equal(t, "综合研判：总体可控。", report.AIContent)
	assert.Equal(t, models.EditStatusAI, report.EditStatus)
	assert.NotEmpty(t, report.GeneratedAt)

	require.Len(t, provider.seen, 1)
	prompt := provider.seen[0].Messages[0].Text
	assert.Contains(t, prompt, "张伟")
	assert.Contains(t, prompt, "血压偏高")
	assert.Contains(t, prompt, "心理底色总体平稳")
	assert.Equal(t, ai.ReportGenerationPrompt, provider.seen[0].System)
}

func TestGenerateOverwritesAndDropsManualEdit(t *testing.T) {
	provider := &blockingProvider{replies: []string{"第一版", "第二版"}}
	s, db := newService(t, provider)
	seedRecords(t, db)
	ctx := context.Background()

	_, err := s.Generate(ctx, "110234")
	require.NoError(t, err)
	_, err = s.EditManually("110234", "领导修订版", "李政委")
	require.NoError(t, err)

	report, err := s.Generate(ctx, "110234")
	require.NoError(t, err)
	assert.Equal(t, "第二版", report.AIContent)
	assert.Empty(t, report.ManualEdit, "regeneration clears manual edits")
	assert.Equal(t, models.EditStatusAI, report.EditStatus)
	assert.Empty(t, report.EditorName)

	var count int64
	require.NoError(t, db.Model(&models.AnalysisReportModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one report per officer")
}

func TestEditManuallyKeepsAIContent(t *testing.T) {
	provider := &blockingProvider{replies: []string{"AI 原文"}}
	s, db := newService(t, provider)
	seedRecords(t, db)

	generated, err := s.Generate(context.Background(), "110234")
	require.NoError(t, err)

	report, err := s.EditManually("110234", "修订后的正文", "李政委")
	require.NoError(t, err)
	assert.Equal(t, "AI 原文", report.AIContent)
	assert.Equal(t, generated.GeneratedAt, report.GeneratedAt, "editing never touches the generation timestamp")
	assert.Equal(t, "修订后的正文", report.ManualEdit)
	assert.Equal(t, models.EditStatusModified, report.EditStatus)
	assert.Equal(t, "李政委", report.EditorName)
	assert.Equal(t, "修订后的正文", report.DisplayContent())
}

func TestEditManuallyWithoutReport(t *testing.T) {
	s, _ := newService(t, &blockingProvider{replies: []string{"x"}})
	_, err := s.EditManually("999999", "内容", "李政委")
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestApplyTemplates(t *testing.T) {
	provider := &blockingProvider{replies: []string{"正文"}}
	s, db := newService(t, provider)
	seedRecords(t, db)
	ctx := context.Background()

	_, err := s.Generate(ctx, "110234")
	require.NoError(t, err)

	report, err := s.ApplyTemplate("110234", TemplatePolitics, "李政委")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report.DisplayContent(), "【政治定性】"), "politics block is prepended")
	assert.True(t, strings.HasSuffix(report.DisplayContent(), "正文"))

	report, err = s.ApplyTemplate("110234", TemplateWarning, "李政委")
	require.NoError(t, err)
	assert.Contains(t, report.DisplayContent(), "【风险警示】")
	assert.True(t, strings.HasPrefix(report.DisplayContent(), "【政治定性】"),
		"templates stack on the current display text")

	report, err = s.ApplyTemplate("110234", TemplateCare, "李政委")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(report.DisplayContent(),
		"【关怀建议】建议基层党组织发挥作用，针对其面临的实际困难开展精准帮扶，落实组织关爱。"))

	_, err = s.ApplyTemplate("110234", "unknown", "李政委")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestConcurrentGenerateNewestWins(t *testing.T) {
	provider := &blockingProvider{
		replies: []string{"旧结果", "新结果"},
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s, _ := newService(t, provider)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := s.Generate(ctx, "110234")
		errs <- err
	}()

	// Wait until the first request is blocked inside the AI call, then
	// claim a newer token the way a second Generate would.
	<-provider.entered
	s.claimToken("110234")

	close(provider.gate)
	err := <-errs
	assert.ErrorIs(t, err, ErrSuperseded)

	_, err = s.Get("110234")
	assert.ErrorIs(t, err, ErrNoReport, "the stale result was not persisted")
}

type firstCallBlocksProvider struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (p *firstCallBlocksProvider) Name() string { return "first-call-blocks" }

func (p *firstCallBlocksProvider) Generate(_ context.Context, _ ai.Request) (string, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	p.mu.Unlock()
	if idx == 0 {
		p.entered <- struct{}{}
		<-p.gate
		return "旧结果", nil
	}
	return "新结果", nil
}

func TestStaleGenerateCannotOverwriteNewer(t *testing.T) {
	provider := &firstCallBlocksProvider{
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s, _ := newService(t, provider)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := s.Generate(ctx, "110234")
		errs <- err
	}()
	<-provider.entered

	// A second request starts and completes while the first is still
	// waiting on the AI.
	newer, err := s.Generate(ctx, "110234")
	require.NoError(t, err)
	assert.Equal(t, "新结果", newer.AIContent)

	close(provider.gate)
	assert.ErrorIs(t, <-errs, ErrSuperseded)

	report, err := s.Get("110234")
	require.NoError(t, err)
	assert.Equal(t, "新结果", report.AIContent, "the stale result never lands over the newer one")
}

func TestGenerateWithoutAnyRecords(t *testing.T) {
	provider := &blockingProvider{replies: []string{"资料不足，建议补充。"}}
	s, _ := newService(t, provider)

	report, err := s.Generate(context.Background(), "999999")
	require.NoError(t, err)
	assert.Equal(t, "资料不足，建议补充。", report.AIContent)
}
