package domain

import "errors"

var (
	// ErrMissingParticipant means the raw payload does not contain the
	// target player; the match stays unprocessed.
	ErrMissingParticipant = errors.New("participant not found in match payload")

	// ErrAmbiguousOwner means a playstyle write was attempted with no
	// owner or with both owners set.
	ErrAmbiguousOwner = errors.New("playstyle owner must be exactly one of player or pro player")

	// ErrConstraintViolation covers dual-owner writes, duplicate ranks and
	// overlapping chapter ranges. Fatal to the single write attempt.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrUpstreamTimeout marks a match-fetch or text-generation call that
	// exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream call timed out")

	ErrNotFound = errors.New("not found")
)
