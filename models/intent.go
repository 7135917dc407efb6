package models

// Intent is one scoring instruction extracted from a chat message
type Intent struct {
	TargetName string
	Delta      int64
	Note       string
}

// AppliedChange describes one intent that reached the ledger
type AppliedChange struct {
	TargetName string
	Delta      int64
	NewScore   int64
}

// ProcessResult reports the per-intent outcome of processing one message.
// Intents fail independently: one rejected intent never blocks its siblings.
type ProcessResult struct {
	Applied []AppliedChange

	// NotFound lists mention names that resolved to no account in the chat
	NotFound []string

	// SelfTarget is set when the actor tried to score themselves
	SelfTarget *string

	// PermissionDenied is set when at least one intent exceeded the
	// actor's allowance; such intents are dropped, never clamped
	PermissionDenied bool

	// Failed lists target names whose commit failed in the store
	Failed []string
}
