package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/models"
)

// Dispatcher fans one detected order event out to every available feedback
// channel. Only the toast is guaranteed; every other channel fails
// independently and silently.
type Dispatcher struct {
	toast    Toaster
	native   NativeChannel
	sound    SoundPlayer
	vibrator Vibrator
	prompter Prompter
	gap      time.Duration
	log      *logger.Logger

	mu    sync.Mutex
	state NativeState
}

// NewDispatcher resolves channel capabilities once. gap separates consecutive
// notifications so simultaneous transitions stay individually perceivable.
func NewDispatcher(
	toast Toaster,
	native NativeChannel,
	sound SoundPlayer,
	vibrator Vibrator,
	prompter Prompter,
	gap time.Duration,
	log *logger.Logger,
) *Dispatcher {
	state := NativeUnsupported
	if native != nil && native.Supported() {
		state = NativeDefault
	}

	return &Dispatcher{
		toast:    toast,
		native:   native,
		sound:    sound,
		vibrator: vibrator,
		prompter: prompter,
		gap:      gap,
		log:      log,
		state:    state,
	}
}

// Permission reports the current consent state.
func (d *Dispatcher) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case NativeGranted:
		return PermissionGranted
	case NativeDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// RequestPermission runs the consent flow for one of the sanctioned
// user-initiated triggers. Once denied it never prompts again; once granted
// it returns immediately.
func (d *Dispatcher) RequestPermission(ctx context.Context, trigger Trigger) Permission {
	d.mu.Lock()
	if d.state != NativeDefault || d.prompter == nil {
		d.mu.Unlock()
		return d.Permission()
	}
	d.mu.Unlock()

	granted, err := d.prompter.AskNotificationPermission(ctx)
	if err != nil {
		d.log.Debug().Err(err).Str("trigger", string(trigger)).Msg("permission prompt failed")
		return PermissionDefault
	}

	d.mu.Lock()
	if granted {
		d.state = NativeGranted
	} else {
		d.state = NativeDenied
	}
	d.mu.Unlock()

	d.log.Info().Bool("granted", granted).Str("trigger", string(trigger)).Msg("notification permission resolved")
	return d.Permission()
}

// Dispatch delivers the events sequentially with a small gap in between,
// never batched into a single message.
func (d *Dispatcher) Dispatch(ctx context.Context, events []models.OrderEvent) {
	for i, ev := range events {
		if i > 0 && d.gap > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.gap):
			}
		}
		d.dispatchOne(ctx, ev)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, ev models.OrderEvent) {
	title, body := messageFor(ev)

	if d.toast != nil {
		d.toast.Toast(levelFor(ev), title)
	}

	if d.Permission() == PermissionGranted {
		if err := d.native.Notify(ctx, title, body); err != nil {
			d.log.Debug().Err(err).Msg("native notification failed")
		}
	}

	if d.sound != nil {
		if err := d.sound.Play(ev.Order.Status.Terminal()); err != nil {
			d.log.Debug().Err(err).Msg("audio cue failed")
		}
	}

	if d.vibrator != nil && d.vibrator.Supported() {
		pattern := PatternIntermediate
		if ev.Order.Status == models.StatusCompleted {
			pattern = PatternTerminal
		}
		if err := d.vibrator.Vibrate(pattern); err != nil {
			d.log.Debug().Err(err).Msg("vibration failed")
		}
	}
}
