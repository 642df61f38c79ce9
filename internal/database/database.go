package database

import (
	"fmt"

	"github.com/jingxin-guardian/core/internal/config"
	"github.com/jingxin-guardian/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the MySQL connection and migrates the schema.
func Connect(cfg *config.AppConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if cfg.IsDev() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSNValue()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := Seed(db, log); err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AccountModel{},
		&models.UserSessionModel{},
		&models.PersonalInfoModel{},
		&models.ExamReportModel{},
		&models.PsychTestReportModel{},
		&models.TalkRecordModel{},
		&models.AnalysisReportModel{},
		&models.OptionModel{},
	)
}

// Seed installs the built-in accounts on an empty database: the system
// administrator, a multi-identity demo account and one demo officer with a
// filled personnel record.
func Seed(db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var count int64
	if err := db.Model(&models.AccountModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		accounts := []models.AccountModel{
			{Username: "admin", Password: "xiaoyuan", Role: models.RoleAdmin, Name: "管理员"},
			{Username: "xiaoyuantest", Password: "123456", Role: models.RoleMultiple, Name: "演示账号"},
			{Username: "TEST001", Password: "password123", Role: models.RoleOfficer, Name: "演示民警"},
		}
		for i := range accounts {
			if err := tx.Create(&accounts[i]).Error; err != nil {
				return err
			}
		}

		demo := models.PersonalInfoModel{
			PoliceID:   "TEST001",
			Name:       "演示民警",
			Department: "演示大队",
			Position:   "二级警员",
			Gender:     "男",
			Age:        "28",
			IDCard:     "110101199501011234",
			Hometown:   "北京市",
			Address:    "警苑小区",
			Phone:      "13800138000",
			Email:      "test@police.cn",
		}
		if err := tx.Create(&demo).Error; err != nil {
			return err
		}

		log.Info("seeded built-in accounts", zap.Int("accounts", len(accounts)))
		return nil
	})
}
