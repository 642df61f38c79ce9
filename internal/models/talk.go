package models

// Gun-carry eligibility conclusions a supervisor may record.
const (
	GunCarryAppropriate = "适宜"
	GunCarryObserve     = "观察"
	GunCarrySuspend     = "暂扣"
	GunCarryRevoke      = "收缴"
)

// TalkRecordModel is one heart-to-heart talk intake form: eight independent
// risk flags each with a free-text detail, narrative fields and the gun-carry
// conclusion. Immutable after creation except for deletion.
type TalkRecordModel struct {
	Base
	OfficerName  string `json:"officer_name"`
	PoliceID     string `json:"police_id"  gorm:"index;not null"`
	Interviewer  string `json:"interviewer"`
	Participants string `json:"participants"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	EntryTime    string `json:"entry_time"`
	ArmedUnit    string `json:"armed_unit"`

	HasFamilyConflict    bool   `json:"has_family_conflict"`
	FamilyConflictDetail string `json:"family_conflict_detail" gorm:"type:text"`
	HasMajorChange       bool   `json:"has_major_change"`
	MajorChangeDetail    string `json:"major_change_detail"    gorm:"type:text"`
	HasDebt              bool   `json:"has_debt"`
	DebtDetail           string `json:"debt_detail"            gorm:"type:text"`
	HasAlcoholIssue      bool   `json:"has_alcohol_issue"`
	AlcoholDetail        string `json:"alcohol_detail"         gorm:"type:text"`
	HasRelationshipIssue bool   `json:"has_relationship_issue"`
	RelationshipDetail   string `json:"relationship_detail"    gorm:"type:text"`
	HasComplexSocial     bool   `json:"has_complex_social"`
	ComplexSocialDetail  string `json:"complex_social_detail"  gorm:"type:text"`
	IsUnderInvestigation bool   `json:"is_under_investigation"`
	InvestigationDetail  string `json:"investigation_detail"   gorm:"type:text"`
	HasMentalIssue       bool   `json:"has_mental_issue"`
	MentalIssueDetail    string `json:"mental_issue_detail"    gorm:"type:text"`

	OtherInfo          string `json:"other_info"          gorm:"type:text"`
	ThoughtDynamic     string `json:"thought_dynamic"     gorm:"type:text"`
	RealityPerformance string `json:"reality_performance" gorm:"type:text"`
	MentalStatus       string `json:"mental_status"       gorm:"type:text"`
	CanCarryGun        string `json:"can_carry_gun"       gorm:"type:varchar(8)"`
}

func (TalkRecordModel) TableName() string { return "talk_records" }

// RiskFlagged reports whether any of the eight risk items was marked.
func (t *TalkRecordModel) RiskFlagged() bool {
	return t.HasFamilyConflict || t.HasMajorChange || t.HasDebt ||
		t.HasAlcoholIssue || t.HasRelationshipIssue || t.HasComplexSocial ||
		t.IsUnderInvestigation || t.HasMentalIssue
}
