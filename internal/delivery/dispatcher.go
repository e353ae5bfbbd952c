package delivery

import (
	"context"
	"errors"
	"sync"

	"github.com/stepauth/stepauth/internal/identity"

	"go.uber.org/zap"
)

// ErrAllChannelsFailed means a code could not be delivered through any
// channel. A code must never be recorded as active in that case.
var ErrAllChannelsFailed = errors.New("failed to deliver passcode over any channel")

type Dispatcher struct {
	channels []IChannel
}

func NewDispatcher(channels []IChannel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

type sendResult struct {
	channel string
	err     error
}

// fanOut launches one goroutine per available channel and joins all results.
// A failing channel never cancels the others.
func (d *Dispatcher) fanOut(
	ctx context.Context,
	account identity.Account,
	code string,
	suppressSMS bool,
) []sendResult {
	type attempt struct {
		channel IChannel
		target  string
	}

	var attempts []attempt
	for _, channel := range d.channels {
		if suppressSMS && channel.Name() == ChannelSMS {
			continue
		}
		if target := channel.Target(account); target != "" {
			attempts = append(attempts, attempt{channel: channel, target: target})
		}
	}

	results := make([]sendResult, len(attempts))
	var wg sync.WaitGroup
	for i, a := range attempts {
		wg.Add(1)
		go func(i int, a attempt) {
			defer wg.Done()
			results[i] = sendResult{
				channel: a.channel.Name(),
				err:     a.channel.Send(ctx, a.target, code),
			}
		}(i, a)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) Send(
	ctx context.Context,
	account identity.Account,
	code string,
	suppressSMS bool,
) error {
	results := d.fanOut(ctx, account, code, suppressSMS)

	delivered := false
	for _, r := range results {
		if r.err != nil {
			zap.L().Warn("Passcode delivery failed on channel",
				zap.String("channel", r.channel),
				zap.Error(r.err))
			continue
		}
		delivered = true
	}

	if !delivered {
		return ErrAllChannelsFailed
	}
	return nil
}

func (d *Dispatcher) SendBestEffort(ctx context.Context, account identity.Account, code string) {
	results := d.fanOut(ctx, account, code, false)
	for _, r := range results {
		if r.err != nil {
			zap.L().Warn("Best-effort passcode delivery failed on channel",
				zap.String("channel", r.channel),
				zap.Error(r.err))
		}
	}
}
