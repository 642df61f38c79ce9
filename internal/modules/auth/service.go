package auth

import (
	"errors"
	"time"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials  = errors.New("用户名或密码错误")
	ErrIdentityInvalid = errors.New("所选身份无效")
	ErrNotMultiRole    = errors.New("该账号无需选择身份")
)

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

// LoginResult carries everything the client needs after authentication.
// For MULTIPLE accounts NeedsIdentity is set and Token stays empty until the
// caller picks an identity via AssumeIdentity.
type LoginResult struct {
	Token         string          `json:"token,omitempty"`
	Role          models.Role     `json:"role"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	LandingRoute  string          `json:"landing_route,omitempty"`
	NeedsIdentity bool            `json:"needs_identity,omitempty"`
	Identities    []models.Role   `json:"identities,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

// LandingRoute maps an acting role to the screen shown right after login.
func LandingRoute(r models.Role) string {
	switch r {
	case models.RoleAdmin:
		return "admin-settings"
	case models.RoleLeader:
		return "dashboard"
	case models.RoleCommander:
		return "talk-entry"
	default:
		return "personal-info"
	}
}

// Login verifies credentials with a direct plaintext comparison and records
// the login. MULTIPLE accounts get no token yet; they must pick an identity.
func (s *Service) Login(username, password, ip, ua string) (*LoginResult, error) {
	account, err := s.verify(username, password, ip)
	if err != nil {
		return nil, err
	}

	if account.Role == models.RoleMultiple {
		return &LoginResult{
			Role:          account.Role,
			Name:          account.Name,
			Username:      account.Username,
			NeedsIdentity: true,
			Identities:    []models.Role{models.RoleOfficer, models.RoleCommander, models.RoleLeader},
		}, nil
	}

	token, sess, err := session.Issue(s.db, account, account.Role, ip, ua, session.DefaultTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        token,
		Role:         account.Role,
		Name:         account.Name,
		Username:     account.Username,
		LandingRoute: LandingRoute(account.Role),
		ExpiresAt:    &sess.ExpiresAt,
	}, nil
}

// AssumeIdentity re-verifies the demo account and issues a session acting as
// the chosen role. Only MULTIPLE accounts may assume, and only the three
// assumable roles are accepted.
func (s *Service) AssumeIdentity(username, password string, identity models.Role, ip, ua string) (*LoginResult, error) {
	account, err := s.verify(username, password, ip)
	if err != nil {
		return nil, err
	}
	if account.Role != models.RoleMultiple {
		return nil, ErrNotMultiRole
	}
	if !identity.Assumable() {
		return nil, ErrIdentityInvalid
	}

	token, sess, err := session.Issue(s.db, account, identity, ip, ua, session.DefaultTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        token,
		Role:         identity,
		Name:         account.Name,
		Username:     account.Username,
		LandingRoute: LandingRoute(identity),
		ExpiresAt:    &sess.ExpiresAt,
	}, nil
}

// Logout revokes the session bound to the presented token.
func (s *Service) Logout(sessionID string) error {
	return session.Revoke(s.db, sessionID)
}

func (s *Service) verify(username, password, ip string) (*models.AccountModel, error) {
	var account models.AccountModel
	err := s.db.Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if account.Password != password {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	updates := map[string]interface{}{"last_login_time": &now, "last_login_ip": ip}
	if err := s.db.Model(&account).Updates(updates).Error; err != nil {
		s.log.Warn("record login time", zap.Error(err))
	}
	return &account, nil
}
