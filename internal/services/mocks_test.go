package services

import (
	"context"
	"sync"
	"time"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/store"
)

type mockSessionStore struct {
	mu      sync.Mutex
	records map[string]*models.SessionRecord
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{records: make(map[string]*models.SessionRecord)}
}

func (m *mockSessionStore) Get(_ context.Context, userName string) (*models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[userName]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *mockSessionStore) Put(_ context.Context, userName string, record models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userName] = &record
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userName)
	return nil
}

func (m *mockSessionStore) IncrementResend(
	_ context.Context,
	userName string,
	max int,
) (store.ResendOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[userName]
	if !ok {
		return store.ResendNoSession, nil
	}
	if record.ResendCount >= max {
		return store.ResendDenied, nil
	}
	record.ResendCount++
	record.OTPAttempts = 0
	return store.ResendAccepted, nil
}

func (m *mockSessionStore) IncrementAttempts(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[userName]; ok {
		record.OTPAttempts++
	}
	return nil
}

func (m *mockSessionStore) ResetOTP(_ context.Context, userName string, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[userName]; ok {
		record.OTP = otp
		record.ResendCount = 0
		record.LastSentResendCount = 0
		record.OTPAttempts = 0
	}
	return nil
}

func (m *mockSessionStore) MarkOTPSent(_ context.Context, userName string, otp string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[userName]
	if !ok || record.ResendCount <= record.LastSentResendCount {
		return false, nil
	}
	record.OTP = otp
	record.LastSentResendCount = record.ResendCount
	return true, nil
}

func (m *mockSessionStore) Close() error { return nil }

type mockResetStore struct {
	mu      sync.Mutex
	records map[string]*models.ResetRecord
	err     error
}

func newMockResetStore() *mockResetStore {
	return &mockResetStore{records: make(map[string]*models.ResetRecord)}
}

func (m *mockResetStore) GetReset(_ context.Context, userName string) (*models.ResetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	record, ok := m.records[userName]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *mockResetStore) PutReset(
	_ context.Context,
	userName string,
	record models.ResetRecord,
	_ time.Duration,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[userName] = &record
	return nil
}

func (m *mockResetStore) DeleteReset(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userName)
	return nil
}

func (m *mockResetStore) record(userName string) *models.ResetRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[userName]
}

type mockIdentity struct {
	account   identity.Account
	getErr    error
	setErr    error
	passwords []string
}

func (m *mockIdentity) VerifyPassword(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (m *mockIdentity) GetAccount(_ context.Context, _, _ string) (identity.Account, error) {
	return m.account, m.getErr
}

func (m *mockIdentity) SetPassword(_ context.Context, _, _, password string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.passwords = append(m.passwords, password)
	return nil
}

func (m *mockIdentity) IsPrivileged(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

type mockDispatcher struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockDispatcher) Send(_ context.Context, _ identity.Account, code string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, code)
	return nil
}

func (m *mockDispatcher) SendBestEffort(_ context.Context, _ identity.Account, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, code)
}

func (m *mockDispatcher) sentCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
