package notify

import (
	"context"
	"os"
	"os/exec"
	"time"
)

// ToastLevel selects the visual style of an in-page toast.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// Toaster is the guaranteed in-page channel, owned by the rendering layer.
type Toaster interface {
	Toast(level ToastLevel, message string)
}

// NativeChannel delivers an OS-level notification.
type NativeChannel interface {
	Supported() bool
	Notify(ctx context.Context, title, body string) error
}

// SoundPlayer plays a short audio cue. terminal distinguishes the cue for an
// order reaching a terminal status from intermediate ones.
type SoundPlayer interface {
	Play(terminal bool) error
}

// Vibrator is the vibration analog for supporting devices.
type Vibrator interface {
	Supported() bool
	Vibrate(pattern []time.Duration) error
}

// desktopChannel shells out to notify-send. Availability is probed once at
// construction.
type desktopChannel struct {
	path string
}

// NewDesktopChannel resolves the OS notification capability. When notify-send
// is absent the channel reports unsupported and the dispatcher degrades to
// toast-only without ever erroring.
func NewDesktopChannel() NativeChannel {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return &desktopChannel{}
	}
	return &desktopChannel{path: path}
}

func (d *desktopChannel) Supported() bool {
	return d.path != ""
}

func (d *desktopChannel) Notify(ctx context.Context, title, body string) error {
	if d.path == "" {
		return nil
	}
	return exec.CommandContext(ctx, d.path, "--app-name=CampusEats", title, body).Run()
}

// bellSound writes the terminal bell. Two bells, briefly spaced, mark a
// terminal status.
type bellSound struct {
	mute bool
}

// NewBellSound returns the audio cue channel; mute disables it entirely.
func NewBellSound(mute bool) SoundPlayer {
	return &bellSound{mute: mute}
}

func (b *bellSound) Play(terminal bool) error {
	if b.mute {
		return nil
	}
	if _, err := os.Stderr.WriteString("\a"); err != nil {
		return err
	}
	if terminal {
		time.Sleep(150 * time.Millisecond)
		_, err := os.Stderr.WriteString("\a")
		return err
	}
	return nil
}

// noopVibrator is the resolved state on hardware without a vibration motor.
type noopVibrator struct{}

// NewVibrator returns the vibration channel for this platform. Desktop
// terminals have none, so the unsupported variant is returned; the dispatcher
// skips the channel silently.
func NewVibrator() Vibrator {
	return noopVibrator{}
}

func (noopVibrator) Supported() bool { return false }

func (noopVibrator) Vibrate([]time.Duration) error { return nil }

// Vibration patterns, kept distinct so a completed order feels different
// from an intermediate step.
var (
	PatternIntermediate = []time.Duration{200 * time.Millisecond}
	PatternTerminal     = []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 400 * time.Millisecond}
)
