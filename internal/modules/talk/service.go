package talk

import (
	"errors"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/modules/officer"
	"github.com/jingxin-guardian/core/internal/pkg/pagination"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultOfficerPassword is the initial password for accounts provisioned
// from a talk record. Plaintext on purpose; the deployment runs on a closed
// intranet and officers are told to change it on first login.
const DefaultOfficerPassword = "123456"

var ErrMissingPoliceID = errors.New("警号不能为空")

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// CreateResult reports what the intake transaction provisioned besides the
// record itself.
type CreateResult struct {
	Record         *models.TalkRecordModel `json:"record"`
	InfoCreated    bool                    `json:"info_created"`
	AccountCreated bool                    `json:"account_created"`
}

// Create stores one talk record and, in the same transaction, provisions a
// minimal personnel record and a login account for the officer when they do
// not exist yet. password overrides the default initial password when set.
func (s *Service) Create(record *models.TalkRecordModel, password string) (*CreateResult, error) {
	if record.PoliceID == "" {
		return nil, ErrMissingPoliceID
	}

	result := &CreateResult{Record: record}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		infoCreated, err := officer.EnsureExists(tx, record.PoliceID, record.OfficerName)
		if err != nil {
			return err
		}
		result.InfoCreated = infoCreated

		accountCreated, err := s.ensureAccount(tx, record.PoliceID, record.OfficerName, password)
		if err != nil {
			return err
		}
		result.AccountCreated = accountCreated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("talk record created",
		zap.String("police_id", record.PoliceID),
		zap.Bool("risk_flagged", record.RiskFlagged()),
		zap.Bool("info_created", result.InfoCreated),
		zap.Bool("account_created", result.AccountCreated))
	return result, nil
}

func (s *Service) ensureAccount(tx *gorm.DB, policeID, name, password string) (bool, error) {
	var count int64
	if err := tx.Model(&models.AccountModel{}).Where("username = ?", policeID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if password == "" {
		password = DefaultOfficerPassword
	}
	account := models.AccountModel{
		Username: policeID,
		Password: password,
		Role:     models.RoleOfficer,
		Name:     name,
	}
	if err := tx.Create(&account).Error; err != nil {
		return false, err
	}
	return true, nil
}

// List returns talk records newest first, optionally filtered by police id.
func (s *Service) List(policeID string, q pagination.Query) ([]models.TalkRecordModel, response.Pagination, error) {
	query := s.db.Model(&models.TalkRecordModel{}).Order("created_at desc")
	if policeID != "" {
		query = query.Where("police_id = ?", policeID)
	}

	var records []models.TalkRecordModel
	page, err := pagination.Paginate(query, q, &records)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return records, page, nil
}

// Get fetches one talk record by id.
func (s *Service) Get(id string) (*models.TalkRecordModel, error) {
	var record models.TalkRecordModel
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes one record. Records are immutable otherwise; corrections
// are made by deleting and re-entering.
func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.TalkRecordModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
