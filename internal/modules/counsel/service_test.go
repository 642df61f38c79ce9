package counsel

import (
	"context"
	"errors"
	"testing"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"github.com/jingxin-guardian/core/internal/modules/psych"
	"github.com/jingxin-guardian/core/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	reply string
	err   error
	seen  []ai.Request
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(_ context.Context, req ai.Request) (string, error) {
	p.seen = append(p.seen, req)
	return p.reply, p.err
}

func newService(t *testing.T, provider ai.Provider) (*Service, *gorm.DB) {
	db := testutil.NewDB(t,
		&models.PersonalInfoModel{}, &models.ExamReportModel{},
		&models.PsychTestReportModel{}, &models.OptionModel{})
	gateway := ai.NewGatewayWithProviders(nil, provider)
	cfgs := configs.NewService(db, nil)
	psychSvc := psych.NewService(db, gateway, cfgs, nil)
	return NewService(db, gateway, cfgs, psychSvc, nil), db
}

func TestOpenGeneratesGroundedOpening(t *testing.T) {
	provider := &fakeProvider{reply: "张伟你好，看到你最近体检有些指标波动，想先听听你自己的感受。"}
	s, db := newService(t, provider)

	require.NoError(t, db.Create(&models.PersonalInfoModel{PoliceID: "110234", Name: "张伟"}).Error)
	require.NoError(t, db.Create(&models.ExamReportModel{PoliceID: "110234", Analysis: "血压偏高"}).Error)
	require.NoError(t, db.Create(&models.PsychTestReportModel{PoliceID: "110234", Content: "整体状态尚可"}).Error)

	result := s.Open(context.Background(), "110234")
	assert.Equal(t, provider.reply, result.Reply)
	require.Len(t, provider.seen, 1)
	prompt := provider.seen[0].Messages[0].Text
	assert.Contains(t, prompt, "张伟")
	assert.Contains(t, prompt, "血压偏高")
	assert.Contains(t, prompt, "整体状态尚可")
	assert.Contains(t, prompt, "去病理化")
}

func TestOpenFallsBackToFriendlyOpener(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	s, _ := newService(t, provider)

	result := s.Open(context.Background(), "110234")
	assert.Equal(t, ai.CounselFallbackOpener, result.Reply,
		"chain failure must never surface a diagnostic here")
	require.Len(t, result.Transcript, 1)
}

func TestMessageReplaysFullTranscript(t *testing.T) {
	provider := &fakeProvider{reply: "我在听"}
	s, _ := newService(t, provider)
	ctx := context.Background()

	s.Open(ctx, "110234")
	_, err := s.Message(ctx, "110234", "最近总是睡不好")
	require.NoError(t, err)
	result, err := s.Message(ctx, "110234", "尤其是大夜班之后")
	require.NoError(t, err)

	last := provider.seen[len(provider.seen)-1]
	require.Len(t, last.Messages, 4, "every turn replays the whole dialogue")
	assert.Equal(t, ai.RoleModel, last.Messages[0].Role)
	assert.Equal(t, "最近总是睡不好", last.Messages[1].Text)
	assert.Equal(t, "尤其是大夜班之后", last.Messages[3].Text)
	assert.Len(t, result.Transcript, 5)
}

func TestMessageWithoutOpen(t *testing.T) {
	s, _ := newService(t, &fakeProvider{reply: "ok"})
	_, err := s.Message(context.Background(), "110234", "你好")
	assert.ErrorIs(t, err, ErrNotOpened)
}

func TestNothingPersisted(t *testing.T) {
	provider := &fakeProvider{reply: "我在听"}
	s, db := newService(t, provider)
	ctx := context.Background()

	s.Open(ctx, "110234")
	for i := 0; i < 5; i++ {
		_, err := s.Message(ctx, "110234", "说点什么")
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.PsychTestReportModel{}).Count(&count).Error)
	assert.Zero(t, count, "counseling leaves no stored artifact")
}

func TestCloseDropsSession(t *testing.T) {
	provider := &fakeProvider{reply: "我在听"}
	s, _ := newService(t, provider)
	ctx := context.Background()

	s.Open(ctx, "110234")
	s.Close("110234")
	_, err := s.Message(ctx, "110234", "你好")
	assert.ErrorIs(t, err, ErrNotOpened)
}
