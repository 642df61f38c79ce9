package models

// TranscriptMessage is one turn of a psych-test or counseling dialogue.
// Role is "user" for the officer and "model" for the AI side.
type TranscriptMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// PsychTestReportModel is the artifact of one completed 10-round covert
// assessment dialogue. Score and level are fixed placeholders until a real
// scoring model ships; content is the final AI reply.
type PsychTestReportModel struct {
	Base
	PoliceID   string              `json:"police_id"  gorm:"index;not null"`
	Date       string              `json:"date"`
	Score      int                 `json:"score"`
	Level      string              `json:"level"` // 优良, 关注, 高危
	Content    string              `json:"content"    gorm:"type:longtext"`
	Transcript []TranscriptMessage `json:"transcript" gorm:"type:longtext;serializer:json"`
}

func (PsychTestReportModel) TableName() string { return "psych_test_reports" }
