package officer

import (
	"errors"

	"github.com/jingxin-guardian/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMissingPoliceID = errors.New("警号不能为空")

// Service is the single mutation entry point for personnel records.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get fetches one officer's record by police id.
func (s *Service) Get(policeID string) (*models.PersonalInfoModel, error) {
	var info models.PersonalInfoModel
	if err := s.db.Where("police_id = ?", policeID).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// Save replaces the officer's record wholesale. Partial updates are not
// offered; the client always submits the complete form.
func (s *Service) Save(info *models.PersonalInfoModel) error {
	if info.PoliceID == "" {
		return ErrMissingPoliceID
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "police_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "department", "position", "gender", "age", "id_card",
			"hometown", "address", "phone", "email", "family", "updated_at",
		}),
	}).Create(info).Error
}

// List returns all personnel records ordered by police id.
func (s *Service) List() ([]models.PersonalInfoModel, error) {
	var infos []models.PersonalInfoModel
	if err := s.db.Order("police_id asc").Find(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

// EnsureExists creates a minimal record for the given police id if none is
// present yet. Used by the talk-entry flow so a record entered for an
// unknown officer never dangles. Returns true when a record was created.
func EnsureExists(tx *gorm.DB, policeID, name string) (bool, error) {
	var count int64
	if err := tx.Model(&models.PersonalInfoModel{}).Where("police_id = ?", policeID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	info := models.PersonalInfoModel{
		PoliceID:   policeID,
		Name:       name,
		Department: "基层科所队",
		Position:   "待定",
		Gender:     "男",
	}
	if err := tx.Create(&info).Error; err != nil {
		return false, err
	}
	return true, nil
}
