package exam

import (
	"context"
	"testing"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"github.com/jingxin-guardian/core/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scriptedProvider struct {
	replies []string
	calls   int
	seen    []ai.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, req ai.Request) (string, error) {
	p.seen = append(p.seen, req)
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return reply, nil
}

func newService(t *testing.T, provider ai.Provider) (*Service, *gorm.DB) {
	db := testutil.NewDB(t, &models.ExamReportModel{}, &models.OptionModel{})
	gateway := ai.NewGatewayWithProviders(nil, provider)
	return NewService(db, gateway, configs.NewService(db, nil), nil), db
}

func TestAnalyzeStoresCompletedReport(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"血压偏高，建议复查。"}}
	s, _ := newService(t, provider)

	report, err := s.Analyze(context.Background(), "110234", "体检表2026.pdf", "血压 145/95")
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusCompleted, report.Status)
	assert.Equal(t, "血压偏高，建议复查。", report.Analysis)
	assert.NotEmpty(t, report.Date)

	require.Len(t, provider.seen, 1)
	assert.Equal(t, ai.ExamSystemInstruction, provider.seen[0].System)
	assert.Contains(t, provider.seen[0].Messages[0].Text, "血压 145/95")
	assert.Contains(t, provider.seen[0].Messages[0].Text, "历史参考：无")
}

func TestAnalyzeFeedsHistory(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"第一次结论", "第二次结论", "第三次结论"}}
	s, _ := newService(t, provider)
	ctx := context.Background()

	_, err := s.Analyze(ctx, "110234", "", "数据一")
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "110234", "", "数据二")
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "110234", "", "数据三")
	require.NoError(t, err)

	last := provider.seen[2].Messages[0].Text
	assert.Contains(t, last, "第一次结论\n---\n第二次结论", "history joins prior analyses oldest first")
}

func TestAnalyzeHistoryScopedPerOfficer(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"结论"}}
	s, _ := newService(t, provider)
	ctx := context.Background()

	_, err := s.Analyze(ctx, "110234", "", "甲的数据")
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "220118", "", "乙的数据")
	require.NoError(t, err)

	assert.Contains(t, provider.seen[1].Messages[0].Text, "历史参考：无",
		"another officer's analyses must not leak into the history")
}

func TestListNewestFirst(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"结论"}}
	s, _ := newService(t, provider)
	ctx := context.Background()

	first, err := s.Analyze(ctx, "110234", "a.pdf", "一")
	require.NoError(t, err)
	second, err := s.Analyze(ctx, "110234", "b.pdf", "二")
	require.NoError(t, err)

	reports, err := s.List("110234")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, first.ID, reports[1].ID)
}

func TestDelete(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"结论"}}
	s, _ := newService(t, provider)

	report, err := s.Analyze(context.Background(), "110234", "", "数据")
	require.NoError(t, err)

	require.NoError(t, s.Delete(report.ID))
	assert.ErrorIs(t, s.Delete(report.ID), gorm.ErrRecordNotFound)

	reports, err := s.List("110234")
	require.NoError(t, err)
	assert.Empty(t, reports)
}
