package psych

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
)

// TotalRounds is the fixed length of one covert assessment: ten user turns,
// each answered once, on top of the seeded opening. A finished transcript
// therefore always holds 21 messages.
const TotalRounds = 10

// Fixed assessment outcome until a real scoring model ships. The value is a
// product decision, not a measurement.
const (
	FixedScore = 88
	FixedLevel = "优良"
)

var (
	ErrNotStarted      = errors.New("测评尚未开始")
	ErrAlreadyFinished = errors.New("本次测评已结束，请重新开始")
	ErrEmptyMessage    = errors.New("消息内容不能为空")
	ErrReplyPending    = errors.New("上一条消息仍在处理中，请稍候")
)

// Phase of one officer's assessment session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

type sessionState struct {
	phase      Phase
	round      int  // completed user turns
	pending    bool // a turn is waiting on the AI; input is closed meanwhile
	transcript []ai.Message
}

// Service drives per-officer assessment dialogues. Sessions are held in
// memory only; an interrupted dialogue is simply abandoned and restarted.
// Only the final report is persisted.
type Service struct {
	db      *gorm.DB
	gateway *ai.Gateway
	configs *configs.Service
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewService(db *gorm.DB, gateway *ai.Gateway, cfgs *configs.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		gateway:  gateway,
		configs:  cfgs,
		log:      log,
		sessions: make(map[string]*sessionState),
	}
}

// TurnResult is what the client renders after each exchange.
type TurnResult struct {
	Reply      string                      `json:"reply"`
	Round      int                         `json:"round"`
	Finished   bool                        `json:"finished"`
	Transcript []ai.Message                `json:"transcript"`
	Report     *models.PsychTestReportModel `json:"report,omitempty"`
}

// Start begins (or restarts) an assessment for the officer. The opening line
// is a fixed template, no AI call is made for it.
func (s *Service) Start(policeID, officerName string) *TurnResult {
	opening := ai.PsychOpeningLine(officerName)

	s.mu.Lock()
	s.sessions[policeID] = &sessionState{
		phase:      PhaseInProgress,
		transcript: []ai.Message{{Role: ai.RoleModel, Text: opening}},
	}
	state := s.sessions[policeID]
	result := &TurnResult{Reply: opening, Round: 0, Transcript: cloneTranscript(state.transcript)}
	s.mu.Unlock()

	return result
}

// Message advances the dialogue by one round. The AI sees only the latest
// user message plus a per-round system instruction; the running transcript
// stays client-side context. While a turn is waiting on the AI the session
// accepts no further input, so one run can never finish twice. On the tenth
// round the session finishes and the report is persisted.
func (s *Service) Message(ctx context.Context, policeID, officerName, text string) (*TurnResult, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	state, ok := s.sessions[policeID]
	if !ok || state.phase == PhaseNotStarted {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}
	if state.phase == PhaseFinished {
		s.mu.Unlock()
		return nil, ErrAlreadyFinished
	}
	if state.pending {
		s.mu.Unlock()
		return nil, ErrReplyPending
	}
	state.pending = true
	round := state.round + 1
	state.transcript = append(state.transcript, ai.Message{Role: ai.RoleUser, Text: text})
	s.mu.Unlock()

	// The instruction labels the turn one past the opening, so the first
	// exchange is round 2 and the closing one round 11.
	instruction := ai.BuildPsychTurnInstruction(officerName, round+1)
	reply := s.gateway.Call(ctx, s.configs.Effective(), text, instruction)

	s.mu.Lock()
	defer s.mu.Unlock()

	state.pending = false
	state.transcript = append(state.transcript, ai.Message{Role: ai.RoleModel, Text: reply})
	state.round = round

	result := &TurnResult{
		Reply:      reply,
		Round:      round,
		Transcript: cloneTranscript(state.transcript),
	}
	if round < TotalRounds {
		return result, nil
	}

	state.phase = PhaseFinished
	report := &models.PsychTestReportModel{
		PoliceID:   policeID,
		Date:       time.Now().Format("2006-01-02"),
		Score:      FixedScore,
		Level:      FixedLevel,
		Content:    reply,
		Transcript: toTranscriptMessages(state.transcript),
	}
	if err := s.db.Create(report).Error; err != nil {
		return nil, err
	}
	s.log.Info("psych assessment finished",
		zap.String("police_id", policeID), zap.String("report_id", report.ID))

	result.Finished = true
	result.Report = report
	return result, nil
}

// State reports the current phase and round of the officer's session.
func (s *Service) State(policeID string) (Phase, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[policeID]
	if !ok {
		return PhaseNotStarted, 0
	}
	return state.phase, state.round
}

// Reports returns the officer's persisted assessment reports, newest first.
func (s *Service) Reports(policeID string) ([]models.PsychTestReportModel, error) {
	var reports []models.PsychTestReportModel
	err := s.db.Where("police_id = ?", policeID).Order("created_at desc").Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// LatestContent returns the content of the most recent report, or "".
func (s *Service) LatestContent(policeID string) string {
	var report models.PsychTestReportModel
	err := s.db.Where("police_id = ?", policeID).Order("created_at desc").First(&report).Error
	if err != nil {
		return ""
	}
	return report.Content
}

func cloneTranscript(in []ai.Message) []ai.Message {
	out := make([]ai.Message, len(in))
	copy(out, in)
	return out
}

func toTranscriptMessages(in []ai.Message) []models.TranscriptMessage {
	out := make([]models.TranscriptMessage, len(in))
	for i, m := range in {
		out[i] = models.TranscriptMessage{Role: m.Role, Text: m.Text}
	}
	return out
}
