package models

// Edit provenance of a composite analysis report.
const (
	EditStatusAI        = "ai"
	EditStatusModified  = "modified"
	EditStatusFinalized = "finalized"
)

// AnalysisReportModel is the AI-generated composite appraisal for one officer.
// The unique index on PoliceID keeps exactly one report per officer; a fresh
// generation overwrites in place. ManualEdit, when set, wins over AIContent
// on every read path.
type AnalysisReportModel struct {
	Base
	PoliceID    string `json:"police_id"    gorm:"uniqueIndex;not null"`
	GeneratedAt string `json:"generated_at"`
	AIContent   string `json:"ai_content"   gorm:"type:longtext"`
	ManualEdit  string `json:"manual_edit"  gorm:"type:longtext"`
	EditStatus  string `json:"edit_status"  gorm:"type:varchar(16)"`
	EditorName  string `json:"editor_name"`
}

func (AnalysisReportModel) TableName() string { return "analysis_reports" }

// DisplayContent returns the text shown to readers: the supervisor's manual
// edit when present, the raw AI output otherwise.
func (r *AnalysisReportModel) DisplayContent() string {
	if r.ManualEdit != "" {
		return r.ManualEdit
	}
	return r.AIContent
}
