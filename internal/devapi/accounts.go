// Package devapi is a stand-in for the remote ParkSphere REST API and push
// channel, for local runs and integration tests.
package devapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/parksphere/portal/internal/core/domain"
)

const codeTTL = 5 * time.Minute

var (
	errCodeExpired   = errors.New("code expired")
	errCodeInvalid   = errors.New("invalid code")
	errUsernameTaken = errors.New("username already taken")
	errEmailTaken    = errors.New("email already registered")
)

// Account is a backend user record.
type Account struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	Role         domain.Role
	PasswordHash string
	TwoFactor    bool
}

func (a *Account) identity() *domain.Identity {
	return &domain.Identity{UserID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role}
}

type challenge struct {
	code    string
	expires time.Time
}

// Directory holds accounts and the one-time codes issued for them.
type Directory struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*Account
	twoStep  map[int64]challenge
	resets   map[string]challenge
	cost     int
	now      func() time.Time
	generate func() string
}

func newDirectory(cost int, now func() time.Time, generate func() string) *Directory {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if now == nil {
		now = time.Now
	}
	if generate == nil {
		generate = randomCode
	}
	return &Directory{
		nextID:   1,
		byID:     make(map[int64]*Account),
		twoStep:  make(map[int64]challenge),
		resets:   make(map[string]challenge),
		cost:     cost,
		now:      now,
		generate: generate,
	}
}

// Register creates an account. Usernames and emails are unique, case-insensitively.
func (d *Directory) Register(username, email, phone, password string, role domain.Role, twoFactor bool) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.byID {
		if strings.EqualFold(a.Username, username) {
			return nil, errUsernameTaken
		}
		if strings.EqualFold(a.Email, email) {
			return nil, errEmailTaken
		}
	}

	a := &Account{
		ID:           d.nextID,
		Username:     username,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: string(hash),
		TwoFactor:    twoFactor,
	}
	d.byID[a.ID] = a
	d.nextID++
	return a, nil
}

// Authenticate checks a username and password.
func (d *Directory) Authenticate(username, password string) (*Account, error) {
	d.mu.Lock()
	a := d.findLocked(func(a *Account) bool { return a.Username == username })
	d.mu.Unlock()

	if a == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return a, nil
}

func (d *Directory) Account(id int64) (*Account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[id]
	return a, ok
}

// Accounts returns every account ordered by ID.
func (d *Directory) Accounts() []*Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Account, 0, len(d.byID))
	for id := int64(1); id < d.nextID; id++ {
		if a, ok := d.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// IssueTwoFactor replaces any pending verification code for the account.
func (d *Directory) IssueTwoFactor(userID int64) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[userID]; !ok {
		return "", domain.ErrUserNotFound
	}
	code := d.generate()
	d.twoStep[userID] = challenge{code: code, expires: d.now().Add(codeTTL)}
	return code, nil
}

// VerifyTwoFactor consumes the pending code on success.
func (d *Directory) VerifyTwoFactor(userID int64, code string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.twoStep[userID]
	if !ok {
		return nil, errCodeInvalid
	}
	if d.now().After(ch.expires) {
		delete(d.twoStep, userID)
		return nil, errCodeExpired
	}
	if ch.code != code {
		return nil, errCodeInvalid
	}
	delete(d.twoStep, userID)
	return d.byID[userID], nil
}

// IssueReset creates a password reset code for the account with email.
func (d *Directory) IssueReset(email string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a := d.findLocked(func(a *Account) bool { return strings.EqualFold(a.Email, email) })
	if a == nil {
		return "", domain.ErrUserNotFound
	}
	code := d.generate()
	d.resets[strings.ToLower(email)] = challenge{code: code, expires: d.now().Add(codeTTL)}
	return code, nil
}

// ResetPassword consumes the reset code and stores the new password.
func (d *Directory) ResetPassword(email, otp, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), d.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(email)
	ch, ok := d.resets[key]
	if !ok || ch.code != otp {
		return errCodeInvalid
	}
	if d.now().After(ch.expires) {
		delete(d.resets, key)
		return errCodeExpired
	}
	a := d.findLocked(func(a *Account) bool { return strings.EqualFold(a.Email, email) })
	if a == nil {
		return domain.ErrUserNotFound
	}
	a.PasswordHash = string(hash)
	delete(d.resets, key)
	return nil
}

func (d *Directory) findLocked(match func(*Account) bool) *Account {
	for _, a := range d.byID {
		if match(a) {
			return a
		}
	}
	return nil
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(fmt.Sprintf("devapi: read random code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
