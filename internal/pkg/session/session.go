package session

import (
	"strings"
	"time"

	"github.com/jingxin-guardian/core/internal/models"
	jwtpkg "github.com/jingxin-guardian/core/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 12 * time.Hour

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(db *gorm.DB, account *models.AccountModel, actingRole models.Role, ip, ua string, ttl time.Duration) (string, *models.UserSessionModel, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.UserSessionModel{
		AccountID: account.ID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.Sign(account.Username, string(actingRole), s.ID, ttl)
	if err != nil {
		_ = db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// IsActive reports whether the session is still valid.
func IsActive(db *gorm.DB, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserSessionModel{}).
		Where("id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Revoke invalidates one session (logout).
func Revoke(db *gorm.DB, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.UserSessionModel{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
