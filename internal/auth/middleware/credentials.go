package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/workshop-grades/internal/rbac"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator checks a username and password and returns the role.
type Authenticator interface {
	Authenticate(username, password string) (string, error)
}

// AdminCredentials is the single configured administrator.
type AdminCredentials struct {
	User     string
	PassHash string // bcrypt
}

func (c AdminCredentials) Authenticate(username, password string) (string, error) {
	if c.User == "" || c.PassHash == "" || username != c.User {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PassHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return "admin", nil
}

type user struct {
	role     string
	passHash string
}

// Users authenticates configured non-admin accounts, each carrying its own
// role.
type Users map[string]user

// ParseUsers reads "name:role:bcrypt-hash" entries. Roles must exist in
// rbac.RolePermissions.
func ParseUsers(entries []string) (Users, error) {
	us := Users{}
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.SplitN(e, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("auth user %d: want name:role:hash", i)
		}
		name, role, hash := parts[0], parts[1], parts[2]
		if _, ok := rbac.RolePermissions[role]; !ok {
			return nil, fmt.Errorf("auth user %q: unknown role %q", name, role)
		}
		if _, dup := us[name]; dup {
			return nil, fmt.Errorf("auth user %q: listed twice", name)
		}
		us[name] = user{role: role, passHash: hash}
	}
	return us, nil
}

func (us Users) Authenticate(username, password string) (string, error) {
	u, ok := us[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.passHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return u.role, nil
}

// Chain tries each authenticator in order; the first match wins.
type Chain []Authenticator

func (c Chain) Authenticate(username, password string) (string, error) {
	for _, a := range c {
		role, err := a.Authenticate(username, password)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) {
			return "", err
		}
	}
	return "", ErrInvalidCredentials
}

// HashPassword is used by the CLI to produce ADMIN_PASS_HASH and AUTH_USERS values.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
