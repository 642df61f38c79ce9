package models

// FamilyMember is one entry in an officer's family roster.
type FamilyMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Job      string `json:"job"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
}

// PersonalInfoModel is the personnel record for one officer, keyed by police id.
// A record may exist without any reports and vice versa; nothing is enforced
// relationally across the collections.
type PersonalInfoModel struct {
	Base
	PoliceID   string         `json:"police_id"  gorm:"uniqueIndex;not null"`
	Name       string         `json:"name"`
	Department string         `json:"department"`
	Position   string         `json:"position"`
	Gender     string         `json:"gender"`
	Age        string         `json:"age"`
	IDCard     string         `json:"id_card"`
	Hometown   string         `json:"hometown"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Family     []FamilyMember `json:"family"     gorm:"type:longtext;serializer:json"`
}

func (PersonalInfoModel) TableName() string { return "personal_info" }
