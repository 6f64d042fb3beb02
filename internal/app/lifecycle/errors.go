// internal/app/lifecycle/errors.go
package lifecycle

import (
	"fmt"
	"time"
)

// Kind categorizes an engine failure. The HTTP layer maps kinds to status
// codes; the engine itself never touches transport concerns.
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed name/type/max members/ids
	KindNotFound                   // group, request, or user absent
	KindForbidden                  // not owner, cooldown active, members-only access
	KindConflict                   // state disagrees with the requested transition
	KindInternal                   // store failure; safe to retry the whole call
)

// Error is a categorized engine failure. Reason is a stable machine-readable
// token; Message is safe to surface to callers. Remaining is set only for
// cooldown rejections.
type Error struct {
	Kind      Kind
	Reason    string
	Message   string
	Remaining time.Duration
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Kind and Reason so errors.Is works against the sentinel
// values below even when an instance carries extra detail (cooldown
// remaining, wrapped cause).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Sentinel failures. Compare with errors.Is.
var (
	ErrInvalidName       = &Error{Kind: KindValidation, Reason: "invalid_name", Message: "group name must be 3-50 characters"}
	ErrInvalidType       = &Error{Kind: KindValidation, Reason: "invalid_type", Message: "group type must be 'private' or 'open'"}
	ErrInvalidMaxMembers = &Error{Kind: KindValidation, Reason: "invalid_max_members", Message: "maximum members must be at least 2"}
	ErrInvalidID         = &Error{Kind: KindValidation, Reason: "invalid_id", Message: "malformed id"}

	ErrGroupNotFound   = &Error{Kind: KindNotFound, Reason: "group_not_found", Message: "group not found"}
	ErrRequestNotFound = &Error{Kind: KindNotFound, Reason: "request_not_found", Message: "join request not found"}

	ErrNotOwner       = &Error{Kind: KindForbidden, Reason: "not_owner", Message: "only the group owner can perform this action"}
	ErrCooldownActive = &Error{Kind: KindForbidden, Reason: "cooldown_active", Message: "you must wait before rejoining this group"}
	ErrMembersOnly    = &Error{Kind: KindForbidden, Reason: "members_only", Message: "you must be a member to access this private group"}

	ErrNameTaken            = &Error{Kind: KindConflict, Reason: "name_taken", Message: "a group with this name already exists"}
	ErrAlreadyMember        = &Error{Kind: KindConflict, Reason: "already_member", Message: "you are already a member of this group"}
	ErrNotAMember           = &Error{Kind: KindConflict, Reason: "not_a_member", Message: "you are not a member of this group"}
	ErrGroupFull            = &Error{Kind: KindConflict, Reason: "group_full", Message: "group has reached maximum member capacity"}
	ErrPendingRequestExists = &Error{Kind: KindConflict, Reason: "pending_request_exists", Message: "you already have a pending join request for this group"}
	ErrRequestProcessed     = &Error{Kind: KindConflict, Reason: "request_processed", Message: "this join request has already been processed"}
	ErrOwnerMustTransfer    = &Error{Kind: KindConflict, Reason: "owner_must_transfer", Message: "owner must transfer ownership before leaving the group"}
	ErrNotSoleMember        = &Error{Kind: KindConflict, Reason: "not_sole_member", Message: "group can only be deleted when you are the sole member"}
	ErrCannotBanishSelf     = &Error{Kind: KindConflict, Reason: "cannot_banish_self", Message: "owner cannot banish themselves"}
	ErrTargetNotMember      = &Error{Kind: KindConflict, Reason: "target_not_member", Message: "target user is not a member of this group"}
	ErrNewOwnerNotMember    = &Error{Kind: KindConflict, Reason: "new_owner_not_member", Message: "new owner must be a member of the group"}
)

// cooldownError carries the exact remaining wait alongside the sentinel
// identity, so errors.Is(err, ErrCooldownActive) still holds.
func cooldownError(remaining time.Duration) *Error {
	hours := int((remaining + time.Hour - 1) / time.Hour)
	return &Error{
		Kind:      KindForbidden,
		Reason:    ErrCooldownActive.Reason,
		Message:   fmt.Sprintf("you must wait %d hours before requesting to rejoin this group", hours),
		Remaining: remaining,
	}
}

// internalError wraps a store failure. The operation is safe to retry:
// mutations are single conditional updates and are never partially applied.
func internalError(op string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Reason:  "internal",
		Message: op + " failed",
		cause:   cause,
	}
}
