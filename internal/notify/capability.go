// Package notify maps order events to user-visible feedback: an in-page
// toast (the only guaranteed channel), an OS-level notification behind a
// permission lifecycle, an audio cue and a vibration analog. Channel
// availability is resolved once at startup into explicit capability states
// instead of being re-probed throughout the code.
package notify

import "context"

// Permission is the tri-state notification consent, process-wide.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// NativeState is the resolved capability of the OS notification channel.
type NativeState int

const (
	// NativeUnsupported means no native channel exists on this system.
	NativeUnsupported NativeState = iota
	// NativeDefault means the channel exists but consent was never asked.
	NativeDefault
	// NativeGranted allows sending without prompting again.
	NativeGranted
	// NativeDenied is sticky: the dispatcher never re-prompts automatically.
	NativeDenied
)

// Trigger identifies the user-initiated moments that may legitimately prompt
// for permission. Prompting outside these triggers is never allowed: a
// consent request without a clear user gesture gets ignored anyway.
type Trigger string

const (
	// TriggerFeedViewed is the first view of the orders feed in a session.
	TriggerFeedViewed Trigger = "feed_viewed"
	// TriggerOrderPlaced fires immediately after a successful checkout.
	TriggerOrderPlaced Trigger = "order_placed"
)

// Prompter asks the user for notification consent. The dashboard implements
// it; the answer is recorded and never asked again within the session once
// denied.
type Prompter interface {
	AskNotificationPermission(ctx context.Context) (granted bool, err error)
}
