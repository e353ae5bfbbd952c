package challenge

import (
	"context"
	"fmt"
	"sync"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/store"
)

// --- Inline Mocks ---

// mockSessionStore mirrors the store's atomic conditional semantics in
// memory so phase logic can be exercised without Redis.
type mockSessionStore struct {
	mu      sync.Mutex
	records map[string]*models.SessionRecord
	deletes []string
	err     error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{records: make(map[string]*models.SessionRecord)}
}

func (m *mockSessionStore) Get(_ context.Context, userName string) (*models.SessionRecord, error) {
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

func (m *mockSessionStore) Put(_ context.Context, userName string, record models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[userName] = &record
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.records, userName)
	m.deletes = append(m.deletes, userName)
	return nil
}

func (m *mockSessionStore) IncrementResend(
	_ context.Context,
	userName string,
	max int,
) (store.ResendOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return store.ResendNoSession, m.err
	}
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
	if m.err != nil {
		return m.err
	}
	if record, ok := m.records[userName]; ok {
		record.OTPAttempts++
	}
	return nil
}

func (m *mockSessionStore) ResetOTP(_ context.Context, userName string, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	record, ok := m.records[userName]
	if !ok {
		return fmt.Errorf("no session record for user")
	}
	record.OTP = otp
	record.ResendCount = 0
	record.LastSentResendCount = 0
	record.OTPAttempts = 0
	return nil
}

func (m *mockSessionStore) MarkOTPSent(_ context.Context, userName string, otp string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	record, ok := m.records[userName]
	if !ok {
		return false, nil
	}
	if record.ResendCount <= record.LastSentResendCount {
		return false, nil
	}
	record.OTP = otp
	record.LastSentResendCount = record.ResendCount
	return true, nil
}

func (m *mockSessionStore) Close() error { return nil }

func (m *mockSessionStore) record(userName string) *models.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[userName]
}

type mockIdentity struct {
	password   string
	account    identity.Account
	privileged bool
	err        error
}

func (m *mockIdentity) VerifyPassword(_ context.Context, _, _, password string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return password == m.password, nil
}

func (m *mockIdentity) GetAccount(_ context.Context, _, _ string) (identity.Account, error) {
	return m.account, m.err
}

func (m *mockIdentity) SetPassword(_ context.Context, _, _, _ string) error {
	return m.err
}

func (m *mockIdentity) IsPrivileged(_ context.Context, _, _ string) (bool, error) {
	return m.privileged, m.err
}

type dispatchedCode struct {
	code        string
	suppressSMS bool
}

type mockDispatcher struct {
	mu   sync.Mutex
	sent []dispatchedCode
	err  error
}

func (m *mockDispatcher) Send(
	_ context.Context,
	_ identity.Account,
	code string,
	suppressSMS bool,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, dispatchedCode{code: code, suppressSMS: suppressSMS})
	return nil
}

func (m *mockDispatcher) SendBestEffort(_ context.Context, _ identity.Account, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, dispatchedCode{code: code})
}

func (m *mockDispatcher) sentCodes() []dispatchedCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dispatchedCode, len(m.sent))
	copy(out, m.sent)
	return out
}

// round builds one transcript entry.
func round(metadata string, result bool) models.SessionRound {
	return models.SessionRound{
		ChallengeName:     "CUSTOM_CHALLENGE",
		ChallengeResult:   result,
		ChallengeMetadata: metadata,
	}
}

func loginEvent(userName string, rounds ...models.SessionRound) models.ChallengeEvent {
	return models.ChallengeEvent{
		UserName: userName,
		Request: models.ChallengeRequest{
			Session: rounds,
			UserAttributes: map[string]string{
				"email":        userName + "@example.com",
				"phone_number": "+15551230000",
			},
		},
	}
}

func answerEvent(userName, metadata, answer string) models.ChallengeEvent {
	event := loginEvent(userName)
	event.Request.PrivateChallengeParameters = map[string]string{"challengeMetadata": metadata}
	event.Request.ChallengeAnswer = answer
	return event
}
