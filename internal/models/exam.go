package models

const (
	ExamStatusPending   = "pending"
	ExamStatusCompleted = "completed"
)

// ExamReportModel stores one physical-exam analysis. Records are immutable
// once created; the only mutation allowed afterwards is deletion.
type ExamReportModel struct {
	Base
	PoliceID string `json:"police_id" gorm:"index;not null"`
	Date     string `json:"date"`
	FileName string `json:"file_name"`
	Analysis string `json:"analysis"  gorm:"type:longtext"`
	Status   string `json:"status"    gorm:"type:varchar(16)"`
}

func (ExamReportModel) TableName() string { return "exam_reports" }
