package models

import "time"

// Role is the access role attached to an account.
type Role string

const (
	RoleOfficer   Role = "OFFICER"   // 普通民警
	RoleCommander Role = "COMMANDER" // 科所队长/录入者
	RoleLeader    Role = "LEADER"    // 政工/领导
	RoleAdmin     Role = "ADMIN"     // 系统管理员
	// RoleMultiple marks demo accounts that pick an identity after login.
	RoleMultiple Role = "MULTIPLE"
)

// Valid reports whether r is a known role value.
func (r Role) Valid() bool {
	switch r {
	case RoleOfficer, RoleCommander, RoleLeader, RoleAdmin, RoleMultiple:
		return true
	}
	return false
}

// Assumable reports whether a MULTIPLE account may act as r.
func (r Role) Assumable() bool {
	switch r {
	case RoleOfficer, RoleCommander, RoleLeader:
		return true
	}
	return false
}

// AccountModel is a login account. For officers the username doubles as the
// police id. Passwords are stored and compared in plaintext: the deployment
// explicitly trades password security for operability on closed intranets.
type AccountModel struct {
	Base
	Username      string     `json:"username" gorm:"uniqueIndex;not null"`
	Password      string     `json:"-"        gorm:"not null"`
	Role          Role       `json:"role"     gorm:"type:varchar(16);not null"`
	Name          string     `json:"name"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (AccountModel) TableName() string { return "accounts" }
