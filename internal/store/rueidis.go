package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/models"

	"github.com/redis/rueidis"
)

// Script return values shared by the session mutations.
const (
	scriptNoSession = -2
	scriptDenied    = -1
)

var incrementResendScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -2 end
local count = tonumber(redis.call('HGET', KEYS[1], 'resendCount') or '0')
if count >= tonumber(ARGV[1]) then return -1 end
redis.call('HSET', KEYS[1], 'otpAttempts', 0)
return redis.call('HINCRBY', KEYS[1], 'resendCount', 1)
`)

var incrementAttemptsScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -2 end
return redis.call('HINCRBY', KEYS[1], 'otpAttempts', 1)
`)

var markOTPSentScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -2 end
local resend = tonumber(redis.call('HGET', KEYS[1], 'resendCount') or '0')
local sent = tonumber(redis.call('HGET', KEYS[1], 'lastSentResendCount') or '0')
if resend <= sent then return 0 end
redis.call('HSET', KEYS[1], 'otp', ARGV[1], 'lastSentResendCount', resend)
return 1
`)

var resetOTPScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -2 end
redis.call('HSET', KEYS[1],
  'otp', ARGV[1],
  'resendCount', 0,
  'lastSentResendCount', 0,
  'otpAttempts', 0)
return 1
`)

var putSessionScript = rueidis.NewLuaScript(`
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1],
  'authFlow', ARGV[1],
  'otp', ARGV[2],
  'resendCount', ARGV[3],
  'lastSentResendCount', ARGV[4],
  'otpAttempts', ARGV[5])
return 1
`)

// RueidisStore backs both the login-session and password-reset namespaces
// with a single Redis client.
type RueidisStore struct {
	client rueidis.Client
}

func NewRueidisStore(config models.RedisStoreConfiguration) (*RueidisStore, error) {
	clientOption := rueidis.ClientOption{
		InitAddress: config.Hosts,
		Password:    config.Password,
	}

	if config.TLSEnabled {
		clientOption.TLSConfig = &tls.Config{
			ServerName: config.TLSServerName,
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := rueidis.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to state store: %w", err)
	}
	return &RueidisStore{client: client}, nil
}

func sessionKey(userName string) string {
	return fmt.Sprintf(configuration.StoreSessionKey, userName)
}

func resetKey(userName string) string {
	return fmt.Sprintf(configuration.StoreResetKey, userName)
}

func (s *RueidisStore) Get(ctx context.Context, userName string) (*models.SessionRecord, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(sessionKey(userName)).Build()).
		AsStrMap()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record := models.SessionRecord{
		AuthFlow: models.AuthFlow(fields["authFlow"]),
		OTP:      fields["otp"],
	}
	record.ResendCount, _ = strconv.Atoi(fields["resendCount"])
	record.LastSentResendCount, _ = strconv.Atoi(fields["lastSentResendCount"])
	record.OTPAttempts, _ = strconv.Atoi(fields["otpAttempts"])
	return &record, nil
}

func (s *RueidisStore) Put(ctx context.Context, userName string, record models.SessionRecord) error {
	return putSessionScript.Exec(ctx, s.client,
		[]string{sessionKey(userName)},
		[]string{
			string(record.AuthFlow),
			record.OTP,
			strconv.Itoa(record.ResendCount),
			strconv.Itoa(record.LastSentResendCount),
			strconv.Itoa(record.OTPAttempts),
		},
	).Error()
}

func (s *RueidisStore) Delete(ctx context.Context, userName string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(sessionKey(userName)).Build()).Error()
}

func (s *RueidisStore) IncrementResend(
	ctx context.Context,
	userName string,
	max int,
) (ResendOutcome, error) {
	result, err := incrementResendScript.Exec(ctx, s.client,
		[]string{sessionKey(userName)},
		[]string{strconv.Itoa(max)},
	).AsInt64()
	if err != nil {
		return ResendNoSession, err
	}

	switch result {
	case scriptNoSession:
		return ResendNoSession, nil
	case scriptDenied:
		return ResendDenied, nil
	default:
		return ResendAccepted, nil
	}
}

func (s *RueidisStore) IncrementAttempts(ctx context.Context, userName string) error {
	// A missing record is not an error here: the session may have been
	// terminated concurrently, and the attempt counter is informational.
	_, err := incrementAttemptsScript.Exec(ctx, s.client,
		[]string{sessionKey(userName)}, nil,
	).AsInt64()
	return err
}

func (s *RueidisStore) ResetOTP(ctx context.Context, userName string, otp string) error {
	result, err := resetOTPScript.Exec(ctx, s.client,
		[]string{sessionKey(userName)},
		[]string{otp},
	).AsInt64()
	if err != nil {
		return err
	}
	if result == scriptNoSession {
		return fmt.Errorf("no session record for user")
	}
	return nil
}

func (s *RueidisStore) MarkOTPSent(ctx context.Context, userName string, otp string) (bool, error) {
	result, err := markOTPSentScript.Exec(ctx, s.client,
		[]string{sessionKey(userName)},
		[]string{otp},
	).AsInt64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (s *RueidisStore) GetReset(ctx context.Context, userName string) (*models.ResetRecord, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(resetKey(userName)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var record models.ResetRecord
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode reset record: %w", err)
	}
	return &record, nil
}

func (s *RueidisStore) PutReset(
	ctx context.Context,
	userName string,
	record models.ResetRecord,
	ttl time.Duration,
) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode reset record: %w", err)
	}

	return s.client.Do(ctx,
		s.client.B().Set().Key(resetKey(userName)).Value(rueidis.BinaryString(data)).
			ExSeconds(int64(ttl.Seconds())).Build(),
	).Error()
}

func (s *RueidisStore) DeleteReset(ctx context.Context, userName string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(resetKey(userName)).Build()).Error()
}

func (s *RueidisStore) Close() error {
	s.client.Close()
	return nil
}
