package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

// In-memory repositories for scenario tests. They follow the contracts in
// store/interfaces.go closely enough to drive the real services end to end.

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memCredentials struct {
	mu   sync.Mutex
	byID map[int64]models.Credential
}

func (m *memCredentials) CreateCredential(_ context.Context, cred models.Credential) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[cred.ActorID]; ok {
		return models.Credential{}, store.ErrActorHasCredential
	}
	for _, c := range m.byID {
		if c.Username == cred.Username {
			return models.Credential{}, store.ErrUsernameTaken
		}
	}
	m.byID[cred.ActorID] = cred
	return cred, nil
}

func (m *memCredentials) FindByUsername(_ context.Context, username string) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Username == username {
			return c, nil
		}
	}
	return models.Credential{}, store.ErrCredentialNotFound
}

func (m *memCredentials) FindByActorID(_ context.Context, actorID int64) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[actorID]
	if !ok {
		return models.Credential{}, store.ErrCredentialNotFound
	}
	return c, nil
}

func (m *memCredentials) update(actorID int64, fn func(*models.Credential)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[actorID]
	if !ok {
		return store.ErrCredentialNotFound
	}
	fn(&c)
	m.byID[actorID] = c
	return nil
}

func (m *memCredentials) UpdatePasswordDigest(_ context.Context, actorID int64, digest string) error {
	return m.update(actorID, func(c *models.Credential) { c.PasswordDigest = digest })
}

func (m *memCredentials) SetActive(_ context.Context, actorID int64, active bool) error {
	return m.update(actorID, func(c *models.Credential) { c.Active = active })
}

func (m *memCredentials) UpdatePhone(_ context.Context, actorID int64, phone *string) error {
	return m.update(actorID, func(c *models.Credential) { c.Phone = phone })
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt
}

func sameOrigin(a, b *string) bool {
	return b == nil || (a != nil && *a == *b)
}

func (m *memAttempts) RecordAttempt(_ context.Context, attempt models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memAttempts) LockStatus(_ context.Context, username string, origin *string, since time.Time) (models.LockStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var status models.LockStatus
	for _, a := range m.attempts {
		if a.Succeeded || a.Username != username || !sameOrigin(a.Origin, origin) {
			continue
		}
		if !a.CreatedAt.Before(since) {
			status.RecentFailures++
		}
		if status.LastFailure == nil || a.CreatedAt.After(*status.LastFailure) {
			at := a.CreatedAt
			status.LastFailure = &at
		}
	}
	return status, nil
}

func (m *memAttempts) CountOriginFailures(_ context.Context, origin string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.attempts {
		if !a.Succeeded && a.Origin != nil && *a.Origin == origin && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memAttempts) DeleteFailures(_ context.Context, username string, origin *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.attempts[:0]
	var deleted int64
	for _, a := range m.attempts {
		if !a.Succeeded && a.Username == username && sameOrigin(a.Origin, origin) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return deleted, nil
}

type memOriginLockouts struct {
	mu    sync.Mutex
	locks []models.OriginLockout
}

func (m *memOriginLockouts) FindActive(_ context.Context, origin string, now time.Time) (*models.OriginLockout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *models.OriginLockout
	for i := range m.locks {
		l := m.locks[i]
		if l.Origin == origin && l.LockedUntil.After(now) && (found == nil || l.LockedUntil.After(found.LockedUntil)) {
			found = &l
		}
	}
	return found, nil
}

func (m *memOriginLockouts) RecordLockout(_ context.Context, lockout models.OriginLockout) (models.OriginLockout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lockout.ID = int64(len(m.locks) + 1)
	m.locks = append(m.locks, lockout)
	return lockout, nil
}

func (m *memOriginLockouts) DeleteLockouts(_ context.Context, username string, origin *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.locks[:0]
	var deleted int64
	for _, l := range m.locks {
		match := (origin != nil && l.Origin == *origin) ||
			(origin == nil && l.Username != nil && *l.Username == username)
		if match {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	m.locks = kept
	return deleted, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions []models.Session
}

func (m *memSessions) CreateWithCap(_ context.Context, session models.Session, maxLive int, now time.Time) (models.Session, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = int64(len(m.sessions) + 1)
	m.sessions = append(m.sessions, session)

	var live []int
	for i, s := range m.sessions {
		if s.ActorID == session.ActorID && s.IsLive(now) {
			live = append(live, i)
		}
	}
	sort.SliceStable(live, func(a, b int) bool {
		return m.sessions[live[a]].CreatedAt.After(m.sessions[live[b]].CreatedAt)
	})

	var evicted int64
	for _, idx := range live[min(len(live), maxLive):] {
		expired := now
		m.sessions[idx].ExpiresAt = &expired
		evicted++
	}
	return session, evicted, nil
}

func (m *memSessions) FindByToken(_ context.Context, token string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return models.Session{}, store.ErrSessionNotFound
}

func (m *memSessions) expire(now time.Time, match func(models.Session) bool) int64 {
	var n int64
	for i, s := range m.sessions {
		if match(s) && s.IsLive(now) {
			expired := now
			m.sessions[i].ExpiresAt = &expired
			n++
		}
	}
	return n
}

func (m *memSessions) RevokeToken(_ context.Context, actorID int64, token string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expire(now, func(s models.Session) bool {
		return s.ActorID == actorID && s.Token == token
	}), nil
}

func (m *memSessions) RevokeAll(_ context.Context, actorID int64, exceptToken *string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expire(now, func(s models.Session) bool {
		return s.ActorID == actorID && (exceptToken == nil || s.Token != *exceptToken)
	}), nil
}

func (m *memSessions) List(_ context.Context, filter models.SessionFilter, _ models.Page, now time.Time) ([]models.Session, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if filter.ActorID != nil && s.ActorID != *filter.ActorID {
			continue
		}
		if filter.Active != nil && s.IsLive(now) != *filter.Active {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *memSessions) CountLive(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.IsLive(now) {
			n++
		}
	}
	return n, nil
}

// memTelemetry keys rows by (actor, device, client event id or device time).
type memTelemetry struct {
	mu      sync.Mutex
	records []models.TelemetryRecord
}

func telemetryKey(r models.TelemetryRecord) string {
	key := r.DeviceDateTime.UTC().Format(time.RFC3339Nano)
	if r.ClientEventID != nil {
		key = "evt:" + *r.ClientEventID
	}
	return strings.Join([]string{strconv.FormatInt(r.ActorID, 10), r.DeviceID, key}, "|")
}

func (m *memTelemetry) UpsertBatch(_ context.Context, records []models.TelemetryRecord) ([]models.TelemetryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TelemetryRecord, 0, len(records))
	for _, r := range records {
		replaced := false
		for i, existing := range m.records {
			if telemetryKey(existing) == telemetryKey(r) {
				r.ID = existing.ID
				m.records[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			r.ID = int64(len(m.records) + 1)
			m.records = append(m.records, r)
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memTelemetry) List(_ context.Context, _ models.TelemetryFilter, _ models.Page) ([]models.TelemetryRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.TelemetryRecord(nil), m.records...)
	return out, int64(len(out)), nil
}

type memSettings struct {
	values map[string]string
}

func (m *memSettings) GetAll(context.Context) (map[string]string, error) {
	return m.values, nil
}

func (m *memSettings) Upsert(_ context.Context, values map[string]int) error {
	for k, v := range values {
		m.values[k] = strconv.Itoa(v)
	}
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memAudit) Record(_ context.Context, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// plainHasher stands in for bcrypt so scenario tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "plain$" + secret, nil }

func (plainHasher) Verify(secret, digest string) bool { return digest == "plain$"+secret }

type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (s *seqTokens) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "token-" + strconv.Itoa(s.n), nil
}

// fieldKeeper wires the real services on the in-memory repositories.
type fieldKeeper struct {
	clock       *testClock
	credentials *memCredentials
	sessionRepo *memSessions
	audit       *memAudit
	settings    *memSettings

	auth      AuthService
	lockouts  LockoutService
	sessions  SessionService
	telemetry TelemetryService
	settingsS SettingsService
}

func newFieldKeeper() *fieldKeeper {
	clock := &testClock{now: time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)}
	fk := &fieldKeeper{
		clock:       clock,
		credentials: &memCredentials{byID: map[int64]models.Credential{}},
		sessionRepo: &memSessions{},
		audit:       &memAudit{},
		settings:    &memSettings{values: map[string]string{}},
	}

	log := logger.Nop()
	audit := NewAuditService(fk.audit, log)
	audit.(*auditService).now = clock.Now
	fk.settingsS = NewSettingsService(fk.settings, audit, log)
	fk.lockouts = NewLockoutService(&memAttempts{}, &memOriginLockouts{}, audit, nil, log)

	sessions := NewSessionService(fk.sessionRepo, fk.settingsS, &seqTokens{}, nil, log)
	sessions.(*sessionService).now = clock.Now
	fk.sessions = sessions

	auth, err := NewAuthService(fk.credentials, plainHasher{}, fk.settingsS, fk.lockouts, sessions, audit, nil, log)
	if err != nil {
		panic(err)
	}
	auth.(*authService).now = clock.Now
	fk.auth = auth

	telemetry := NewTelemetryService(&memTelemetry{}, nil, log)
	telemetry.(*telemetryService).now = clock.Now
	fk.telemetry = NewTelemetryValidationService().Wrap(telemetry)

	return fk
}

func (fk *fieldKeeper) addCredential(actorID, projectID int64, username, password string) {
	fk.credentials.byID[actorID] = models.Credential{
		ActorID:        actorID,
		ProjectID:      projectID,
		Username:       username,
		PasswordDigest: "plain$" + password,
		Active:         true,
	}
}
