package configs

import (
	"encoding/json"
	"sync"

	"github.com/jingxin-guardian/core/internal/config"
	"github.com/jingxin-guardian/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptionName is the fixed options-table key the provider settings live under.
const OptionName = "jingxin_guardian_config"

// Service owns the persisted AI provider configuration. Reads go through an
// in-memory cache; writes sanitize, persist and refresh the cache in one
// step, so the effective settings the gateway sees are always current.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	mu        sync.RWMutex
	persisted *config.SystemConfig
	loaded    bool
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// Persisted returns the admin-saved settings, or nil when none were saved.
// A row with malformed JSON counts as not saved; the resolver then falls
// through to environment and defaults rather than serving garbage.
func (s *Service) Persisted() *config.SystemConfig {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.persisted
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.persisted = s.load()
		s.loaded = true
	}
	return s.persisted
}

func (s *Service) load() *config.SystemConfig {
	var row models.OptionModel
	err := s.db.Where("name = ?", OptionName).First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.log.Warn("load system config", zap.Error(err))
		}
		return nil
	}

	var cfg config.SystemConfig
	if err := json.Unmarshal([]byte(row.Value), &cfg); err != nil {
		s.log.Warn("system config row is not valid json, ignoring",
			zap.String("option", OptionName), zap.Error(err))
		return nil
	}
	return &cfg
}

// Effective resolves the configuration the AI gateway should use right now:
// persisted settings first, environment overrides second, built-ins last,
// merged field by field.
func (s *Service) Effective() config.SystemConfig {
	return config.ResolveSystemConfig(s.Persisted(), config.EnvSystemConfig(), config.DefaultSystemConfig())
}

// Update sanitizes and persists new settings, then refreshes the cache.
func (s *Service) Update(cfg config.SystemConfig) (config.SystemConfig, error) {
	clean := cfg.Sanitized()
	raw, err := json.Marshal(clean)
	if err != nil {
		return config.SystemConfig{}, err
	}

	row := models.OptionModel{Name: OptionName, Value: string(raw)}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return config.SystemConfig{}, err
	}

	s.mu.Lock()
	s.persisted = &clean
	s.loaded = true
	s.mu.Unlock()

	s.log.Info("system config updated")
	return clean, nil
}

// Reset deletes the persisted settings so environment and defaults apply.
func (s *Service) Reset() error {
	err := s.db.Unscoped().Where("name = ?", OptionName).Delete(&models.OptionModel{}).Error
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.persisted = nil
	s.loaded = true
	s.mu.Unlock()
	return nil
}
