// Package events defines the typed payloads published on the eventbus during
// a Resolve call. Shape and naming (past-tense Start/Finish pairs) follow the
// teacher's internal/events/*.go.
package events

import "time"

// ResolveStart is published when Resolve begins draining its work stack.
type ResolveStart struct {
	DeclaredRootType string
}

// ResolveFinish is published at the end of a Resolve call that started
// traversal: after cleanup (patch, rehash, missing-field) completes, or as
// soon as the traversal or cleanup fails.
type ResolveFinish struct {
	Err      error
	Duration time.Duration
}

// PatchPass brackets the patch pass of cleanup (spec §4.2).
type PatchPass struct {
	Resolved int
	Err      error
}

// RehashPass brackets the rehash pass of cleanup (spec §4.6).
type RehashPass struct {
	Containers int
	Err        error
}

// MissingFieldReported is published once per MissingField, after the patch
// and rehash passes (spec §8 property 6).
type MissingFieldReported struct {
	TargetType string
	Field      string
}

// ScalarProbeFailed is published when the scalar-conversion probe attempted
// during record instantiation (spec §4.1 step 4) fails; per spec §9's open
// question, this is a diagnostic, not a fault that aborts resolution.
type ScalarProbeFailed struct {
	TargetType string
	Err        error
}
