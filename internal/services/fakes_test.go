package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
)

// In-memory заглушки репозиториев для тестов сервисного слоя.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) get(id int) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.E(apperrors.KindConflict, "email already registered")
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "user not found")
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.E(apperrors.KindNotFound, "user not found")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID int, passwordHash string, maxLogin, maxRecovery int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "user not found")
	}
	u.PasswordHash = passwordHash
	u.LoginAttemptsLeft = maxLogin
	u.RecoveryAttemptsLeft = maxRecovery
	return nil
}

func (r *fakeUserRepo) ResetAttempts(ctx context.Context, userID int, maxLogin, maxRecovery int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "user not found")
	}
	u.LoginAttemptsLeft = maxLogin
	u.RecoveryAttemptsLeft = maxRecovery
	return nil
}

func (r *fakeUserRepo) DecrementLoginAttempts(ctx context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, apperrors.E(apperrors.KindNotFound, "user not found")
	}
	if u.LoginAttemptsLeft > 0 {
		u.LoginAttemptsLeft--
	}
	return u.LoginAttemptsLeft, nil
}

func (r *fakeUserRepo) DecrementRecoveryAttempts(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "user not found")
	}
	if u.RecoveryAttemptsLeft > 0 {
		u.RecoveryAttemptsLeft--
	}
	return nil
}

func (r *fakeUserRepo) Lock(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "user not found")
	}
	u.IsLocked = true
	return nil
}

type fakeChallengeRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.RecoveryChallenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{items: map[int64]*models.RecoveryChallenge{}}
}

func (r *fakeChallengeRepo) byToken(token string) *models.RecoveryChallenge {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.items {
		if ch.Token == token {
			return ch
		}
	}
	return nil
}

func (r *fakeChallengeRepo) Upsert(ctx context.Context, ch *models.RecoveryChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, old := range r.items {
		if old.UserID == ch.UserID && old.Purpose == ch.Purpose {
			delete(r.items, id)
		}
	}
	r.nextID++
	ch.ID = r.nextID
	ch.CreatedAt = time.Now()
	cp := *ch
	r.items[ch.ID] = &cp
	return nil
}

func (r *fakeChallengeRepo) FindLiveByToken(ctx context.Context, purpose, token string) (*models.RecoveryChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.items {
		if ch.Purpose == purpose && ch.Token == token &&
			!ch.ExpiresAt.Before(time.Now()) && ch.AttemptsLeft > 0 {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "challenge not found")
}

func (r *fakeChallengeRepo) DeleteByUserAndToken(ctx context.Context, userID int, purpose, token string) (*models.RecoveryChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.items {
		if ch.UserID == userID && ch.Purpose == purpose && ch.Token == token {
			cp := *ch
			delete(r.items, id)
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "challenge not found")
}

func (r *fakeChallengeRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperrors.E(apperrors.KindNotFound, "challenge not found")
	}
	delete(r.items, id)
	return nil
}

func (r *fakeChallengeRepo) DecrementAttempts(ctx context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.items[id]
	if !ok {
		return 0, apperrors.E(apperrors.KindNotFound, "challenge not found")
	}
	if ch.AttemptsLeft > 0 {
		ch.AttemptsLeft--
	}
	return ch.AttemptsLeft, nil
}

type fakeComplaintRepo struct {
	mu     sync.Mutex
	nextID int
	items  []*models.Complaint
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{}
}

func (r *fakeComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.Title == c.Title {
			return apperrors.E(apperrors.KindConflict, "complaint title already exists")
		}
	}
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeComplaintRepo) GetByID(ctx context.Context, id int) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "complaint not found")
}

func (r *fakeComplaintRepo) GetByIDForUser(ctx context.Context, userID, id int) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id && it.CreatedBy == userID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "complaint not found")
}

func (r *fakeComplaintRepo) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Complaint, error) {
	return r.List(ctx, "", userID, limit, offset)
}

func (r *fakeComplaintRepo) List(ctx context.Context, status string, userID, limit, offset int) ([]*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var filtered []*models.Complaint
	for _, it := range r.items {
		if status != "" && it.Status != status {
			continue
		}
		if userID != 0 && it.CreatedBy != userID {
			continue
		}
		cp := *it
		filtered = append(filtered, &cp)
	}
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (r *fakeComplaintRepo) UpdateStatus(ctx context.Context, id int, status string) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			it.Status = status
			it.UpdatedAt = time.Now()
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperrors.E(apperrors.KindNotFound, "complaint not found")
}

// fakeEmailService пишет в каналы, чтобы тесты могли дождаться
// писем, отправляемых из фоновых горутин.
type fakeEmailService struct {
	welcome chan string // получатель
	codes   chan string // код из письма
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{
		welcome: make(chan string, 8),
		codes:   make(chan string, 8),
	}
}

func (s *fakeEmailService) SendWelcomeEmail(email, firstName string) error {
	s.welcome <- email
	return nil
}

func (s *fakeEmailService) SendRecoveryCodeEmail(email, code string) error {
	s.codes <- code
	return nil
}

type fakeAlertService struct {
	locked chan int // user id
	filed  chan int // complaint id
}

func newFakeAlertService() *fakeAlertService {
	return &fakeAlertService{
		locked: make(chan int, 8),
		filed:  make(chan int, 8),
	}
}

func (s *fakeAlertService) AccountLocked(user *models.User)    { s.locked <- user.ID }
func (s *fakeAlertService) ComplaintFiled(c *models.Complaint) { s.filed <- c.ID }

func waitSignal(ch chan int, d time.Duration) (int, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(d):
		return 0, false
	}
}
