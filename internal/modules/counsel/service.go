package counsel

import (
	"context"
	"errors"
	"sync"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"github.com/jingxin-guardian/core/internal/modules/psych"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotOpened = errors.New("疏导会话尚未开始")

// Service runs open-ended counseling chats. Unlike the assessment dialogue
// there is no round limit and nothing is ever persisted: transcripts live in
// memory for the lifetime of the session and vanish on restart.
type Service struct {
	db      *gorm.DB
	gateway *ai.Gateway
	configs *configs.Service
	psych   *psych.Service
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string][]ai.Message
}

func NewService(db *gorm.DB, gateway *ai.Gateway, cfgs *configs.Service, psychSvc *psych.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		gateway:  gateway,
		configs:  cfgs,
		psych:    psychSvc,
		log:      log,
		sessions: make(map[string][]ai.Message),
	}
}

// TurnResult is one exchange plus the running transcript.
type TurnResult struct {
	Reply      string       `json:"reply"`
	Transcript []ai.Message `json:"transcript"`
}

// Open starts (or restarts) a counseling session. The opening line is
// generated from the officer's latest records; when the chain is down the
// fixed friendly opener is used instead, so this surface never shows an
// error or a diagnostic.
func (s *Service) Open(ctx context.Context, policeID string) *TurnResult {
	prompt := ai.BuildCounselOpeningPrompt(s.officerInfo(policeID), s.latestExam(policeID), s.psych.LatestContent(policeID))

	opening, err := s.gateway.Chat(ctx, s.configs.Effective(),
		[]ai.Message{{Role: ai.RoleUser, Text: prompt}}, "")
	if err != nil {
		s.log.Warn("counsel opening generation failed, using fallback", zap.Error(err))
		opening = ai.CounselFallbackOpener
	}

	s.mu.Lock()
	s.sessions[policeID] = []ai.Message{{Role: ai.RoleModel, Text: opening}}
	transcript := cloneTranscript(s.sessions[policeID])
	s.mu.Unlock()

	return &TurnResult{Reply: opening, Transcript: transcript}
}

// Message sends one officer message. The full transcript is replayed to the
// provider every turn so the conversation keeps its context.
func (s *Service) Message(ctx context.Context, policeID, text string) (*TurnResult, error) {
	s.mu.Lock()
	transcript, ok := s.sessions[policeID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotOpened
	}
	transcript = append(transcript, ai.Message{Role: ai.RoleUser, Text: text})
	s.sessions[policeID] = transcript
	outbound := cloneTranscript(transcript)
	s.mu.Unlock()

	reply := s.gateway.CallChat(ctx, s.configs.Effective(), outbound,
		"你是警察心理疏导员。遵循去病理化、战术性建议的原则。")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[policeID] = append(s.sessions[policeID], ai.Message{Role: ai.RoleModel, Text: reply})
	return &TurnResult{Reply: reply, Transcript: cloneTranscript(s.sessions[policeID])}, nil
}

// Close drops the in-memory session, if any.
func (s *Service) Close(policeID string) {
	s.mu.Lock()
	delete(s.sessions, policeID)
	s.mu.Unlock()
}

func (s *Service) officerInfo(policeID string) *models.PersonalInfoModel {
	var info models.PersonalInfoModel
	if err := s.db.Where("police_id = ?", policeID).First(&info).Error; err != nil {
		return nil
	}
	return &info
}

func (s *Service) latestExam(policeID string) *models.ExamReportModel {
	var report models.ExamReportModel
	err := s.db.Where("police_id = ?", policeID).Order("created_at desc").First(&report).Error
	if err != nil {
		return nil
	}
	return &report
}

func cloneTranscript(in []ai.Message) []ai.Message {
	out := make([]ai.Message, len(in))
	copy(out, in)
	return out
}
