// internal/app/lifecycle/engine.go
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config holds the engine's tunable policy values.
type Config struct {
	// CooldownWindow is how long a user who left or was banished must wait
	// before rejoining a private group. Default 48 hours.
	CooldownWindow time.Duration

	// DefaultMaxMembers is applied at create time when the caller does not
	// specify a cap. Zero means newly created groups default to unlimited.
	DefaultMaxMembers int32
}

// Engine orchestrates the group membership lifecycle: it runs the pure
// admission policies, drives the aggregate store's conditional mutations,
// and keeps the membership history log causally consistent with them.
// One Engine serves all groups; operations on different groups proceed
// independently.
type Engine struct {
	groups   GroupStore
	history  HistoryStore
	requests JoinRequestStore
	messages MessagePurger
	events   Broadcaster
	sess     Sessioner
	cfg      Config
	log      *zap.Logger

	// now is swappable for cooldown tests.
	now func() time.Time
}

// NewEngine constructs an Engine. A nil broadcaster suppresses events and a
// nil sessioner falls back to sequential execution.
func NewEngine(groups GroupStore, history HistoryStore, requests JoinRequestStore, messages MessagePurger, events Broadcaster, sess Sessioner, cfg Config, logger *zap.Logger) *Engine {
	if cfg.CooldownWindow <= 0 {
		cfg.CooldownWindow = 48 * time.Hour
	}
	if events == nil {
		events = NopBroadcaster{}
	}
	if sess == nil {
		sess = sequentialSessioner{}
	}
	return &Engine{
		groups:   groups,
		history:  history,
		requests: requests,
		messages: messages,
		events:   events,
		sess:     sess,
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
	}
}

// sequentialSessioner runs fn directly; used when no transaction support is
// wired in (tests, standalone tools).
type sequentialSessioner struct{}

func (sequentialSessioner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// JoinStatus is the outcome of a Join call.
type JoinStatus string

const (
	// JoinedImmediately means the user is now a member.
	JoinedImmediately JoinStatus = "joined"
	// RequestSubmitted means admission is gated on the owner's approval.
	RequestSubmitted JoinStatus = "request_submitted"
)

// Create validates the inputs and creates a group with the owner as sole
// member, appending the owner's "joined" history entry.
func (e *Engine) Create(ctx context.Context, name, groupType string, ownerID primitive.ObjectID, maxMembers *int32) (models.Group, error) {
	name = strings.TrimSpace(name)
	if len(name) < models.GroupNameMinLen || len(name) > models.GroupNameMaxLen {
		return models.Group{}, ErrInvalidName
	}
	groupType = strings.ToLower(strings.TrimSpace(groupType))
	if groupType != models.GroupTypePrivate && groupType != models.GroupTypeOpen {
		return models.Group{}, ErrInvalidType
	}
	if maxMembers != nil && *maxMembers < 2 {
		return models.Group{}, ErrInvalidMaxMembers
	}
	if ownerID.IsZero() {
		return models.Group{}, ErrInvalidID
	}

	g := models.Group{
		Name:          name,
		Type:          groupType,
		OwnerID:       ownerID,
		MemberIDs:     []primitive.ObjectID{ownerID},
		BannedUserIDs: []primitive.ObjectID{},
		MaxMembers:    maxMembers,
	}

	var created models.Group
	err := e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = e.groups.Create(ctx, g)
		if err != nil {
			return err
		}
		return e.history.Append(ctx, models.MemberHistoryEntry{
			UserID:        ownerID,
			GroupID:       created.ID,
			Action:        models.ActionJoined,
			Timestamp:     e.now().UTC(),
			PerformedByID: ownerID,
		})
	})
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return models.Group{}, le
		}
		return models.Group{}, internalError("create group", err)
	}

	e.log.Info("group created",
		zap.String("group_id", created.ID.Hex()),
		zap.String("type", created.Type),
		zap.String("owner_id", ownerID.Hex()))
	return created, nil
}

// Join decides admission for userID. Open groups admit eligible users
// immediately; private groups, and open groups when the user is banned,
// produce a pending join request instead.
//
// The cooldown gate runs only for private groups: a banned user rejoining an
// open group is routed through owner approval with no time gate. That
// asymmetry is inherited behavior, kept deliberately rather than unified.
func (e *Engine) Join(ctx context.Context, groupID, userID primitive.ObjectID) (JoinStatus, error) {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return "", err
	}

	if admission.IsMember(g, userID) {
		return "", ErrAlreadyMember
	}
	if !admission.HasCapacity(len(g.MemberIDs), g.MaxMembers) {
		return "", ErrGroupFull
	}

	if g.Type == models.GroupTypePrivate {
		last, err := e.history.LastDeparture(ctx, userID, groupID)
		if err != nil {
			return "", internalError("cooldown lookup", err)
		}
		if active, remaining := admission.Cooldown(last, e.now(), e.cfg.CooldownWindow); active {
			return "", cooldownError(remaining)
		}
	}

	if g.Type == models.GroupTypeOpen && !admission.IsBanned(g, userID) {
		if err := e.admitMember(ctx, groupID, userID); err != nil {
			return "", err
		}
		e.events.Publish(Event{GroupID: groupID, UserID: userID, Action: models.ActionJoined})
		return JoinedImmediately, nil
	}

	// Private group, or banned user knocking on an open group: gate on the
	// owner's decision. Capacity is re-checked at approval time.
	if _, err := e.Requests().Submit(ctx, userID, groupID); err != nil {
		return "", err
	}
	return RequestSubmitted, nil
}

// Leave removes userID from the group and appends the "left" entry that
// future cooldown checks key on. The owner must transfer ownership first.
func (e *Engine) Leave(ctx context.Context, groupID, userID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsMember(g, userID) {
		return ErrNotAMember
	}
	if admission.IsOwner(g, userID) {
		return ErrOwnerMustTransfer
	}

	err = e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.groups.RemoveMember(ctx, groupID, userID); err != nil {
			return err
		}
		return e.history.Append(ctx, models.MemberHistoryEntry{
			UserID:        userID,
			GroupID:       groupID,
			Action:        models.ActionLeft,
			Timestamp:     e.now().UTC(),
			PerformedByID: userID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return e.classifyRemoveMiss(ctx, groupID, userID)
		}
		return internalError("leave group", err)
	}

	e.events.Publish(Event{GroupID: groupID, UserID: userID, Action: models.ActionLeft})
	return nil
}

// Banish moves targetID from the member set to the banned set. Owner only;
// the owner cannot banish themselves. Banishment starts the same cooldown
// window as leaving.
func (e *Engine) Banish(ctx context.Context, groupID, ownerID, targetID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, ownerID) {
		return ErrNotOwner
	}
	if targetID == ownerID {
		return ErrCannotBanishSelf
	}
	if !admission.IsMember(g, targetID) {
		return ErrTargetNotMember
	}

	err = e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.groups.BanishMember(ctx, groupID, ownerID, targetID); err != nil {
			return err
		}
		return e.history.Append(ctx, models.MemberHistoryEntry{
			UserID:        targetID,
			GroupID:       groupID,
			Action:        models.ActionBanished,
			Timestamp:     e.now().UTC(),
			PerformedByID: ownerID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return e.classifyBanishMiss(ctx, groupID, ownerID, targetID)
		}
		return internalError("banish member", err)
	}

	e.events.Publish(Event{GroupID: groupID, UserID: targetID, Action: models.ActionBanished})
	return nil
}

// TransferOwnership reassigns the owner. The new owner must already be a
// member; the member set is untouched and no history entry is produced,
// since ownership change is not a membership transition.
func (e *Engine) TransferOwnership(ctx context.Context, groupID, currentOwnerID, newOwnerID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, currentOwnerID) {
		return ErrNotOwner
	}
	if !admission.IsMember(g, newOwnerID) {
		return ErrNewOwnerNotMember
	}

	if err := e.groups.TransferOwner(ctx, groupID, currentOwnerID, newOwnerID); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return e.classifyTransferMiss(ctx, groupID, currentOwnerID, newOwnerID)
		}
		return internalError("transfer ownership", err)
	}

	e.log.Info("ownership transferred",
		zap.String("group_id", groupID.Hex()),
		zap.String("from", currentOwnerID.Hex()),
		zap.String("to", newOwnerID.Hex()))
	return nil
}

// Delete removes a sole-member group and purges its message history. The
// purge runs before the aggregate is removed, so a failed purge leaves the
// group intact and no reader ever observes a partial deletion.
func (e *Engine) Delete(ctx context.Context, groupID, ownerID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, ownerID) {
		return ErrNotOwner
	}
	if len(g.MemberIDs) != 1 {
		return ErrNotSoleMember
	}

	err = e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.messages.PurgeGroup(ctx, groupID); err != nil {
			return err
		}
		return e.groups.DeleteSoleOwned(ctx, groupID, ownerID)
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return e.classifyDeleteMiss(ctx, groupID, ownerID)
		}
		return internalError("delete group", err)
	}

	e.log.Info("group deleted", zap.String("group_id", groupID.Hex()))
	return nil
}

// Requests returns the join-request workflow bound to this engine.
func (e *Engine) Requests() *RequestWorkflow {
	return &RequestWorkflow{e: e}
}

// admitMember is the single capacity-checked admission path shared by
// immediate joins and request approvals. The store's conditional update
// enforces "not already a member AND under capacity" atomically with the
// membership write, so concurrent admissions cannot overrun the cap.
// Callers publish the joined event after their enclosing work commits.
func (e *Engine) admitMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	err := e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.groups.AdmitMember(ctx, groupID, userID); err != nil {
			return err
		}
		return e.history.Append(ctx, models.MemberHistoryEntry{
			UserID:        userID,
			GroupID:       groupID,
			Action:        models.ActionJoined,
			Timestamp:     e.now().UTC(),
			PerformedByID: userID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return e.classifyAdmitMiss(ctx, groupID, userID)
		}
		var le *Error
		if errors.As(err, &le) {
			return le
		}
		return internalError("admit member", err)
	}
	return nil
}

// isNoDocuments reports the stores' "absent document" condition.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func (e *Engine) getGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	g, err := e.groups.GetByID(ctx, groupID)
	if isNoDocuments(err) {
		return models.Group{}, ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, internalError("load group", err)
	}
	return g, nil
}

// Miss classification: a conditional update that matched nothing raced with
// another operation. Reload the snapshot and return the failure a sequential
// execution would have produced.

func (e *Engine) classifyAdmitMiss(ctx context.Context, groupID, userID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if admission.IsMember(g, userID) {
		return ErrAlreadyMember
	}
	if !admission.HasCapacity(len(g.MemberIDs), g.MaxMembers) {
		return ErrGroupFull
	}
	return internalError("admit member", ErrConditionFailed)
}

func (e *Engine) classifyRemoveMiss(ctx context.Context, groupID, userID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if admission.IsOwner(g, userID) {
		return ErrOwnerMustTransfer
	}
	if !admission.IsMember(g, userID) {
		return ErrNotAMember
	}
	return internalError("leave group", ErrConditionFailed)
}

func (e *Engine) classifyBanishMiss(ctx context.Context, groupID, ownerID, targetID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, ownerID) {
		return ErrNotOwner
	}
	if !admission.IsMember(g, targetID) {
		return ErrTargetNotMember
	}
	return internalError("banish member", ErrConditionFailed)
}

func (e *Engine) classifyTransferMiss(ctx context.Context, groupID, currentOwnerID, newOwnerID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, currentOwnerID) {
		return ErrNotOwner
	}
	if !admission.IsMember(g, newOwnerID) {
		return ErrNewOwnerNotMember
	}
	return internalError("transfer ownership", ErrConditionFailed)
}

func (e *Engine) classifyDeleteMiss(ctx context.Context, groupID, ownerID primitive.ObjectID) error {
	g, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !admission.IsOwner(g, ownerID) {
		return ErrNotOwner
	}
	if len(g.MemberIDs) != 1 {
		return ErrNotSoleMember
	}
	return internalError("delete group", ErrConditionFailed)
}
