// internal/app/lifecycle/workflow.go
package lifecycle

import (
	"context"
	"errors"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RequestWorkflow manages the pending/approved/declined lifecycle of gated
// admissions. Approval delegates back into the engine's admit path so every
// admission, immediate or approved, goes through the same capacity-checked
// conditional update.
type RequestWorkflow struct {
	e *Engine
}

// Submit creates a pending request for the pair. Capacity is deliberately
// not checked here; it is re-checked at approval time, when it matters.
func (w *RequestWorkflow) Submit(ctx context.Context, userID, groupID primitive.ObjectID) (models.JoinRequest, error) {
	req, err := w.e.requests.Create(ctx, models.JoinRequest{
		UserID:      userID,
		GroupID:     groupID,
		Status:      models.RequestPending,
		RequestedAt: w.e.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePending) {
			return models.JoinRequest{}, ErrPendingRequestExists
		}
		return models.JoinRequest{}, internalError("submit join request", err)
	}

	w.e.log.Info("join request submitted",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))
	return req, nil
}

// ListPending returns the group's pending requests, oldest first. Owner only;
// ownership is checked against the loaded group, not caller-supplied state.
func (w *RequestWorkflow) ListPending(ctx context.Context, groupID, callerID primitive.ObjectID) ([]models.JoinRequest, error) {
	g, err := w.e.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !admission.IsOwner(g, callerID) {
		return nil, ErrNotOwner
	}

	reqs, err := w.e.requests.ListPending(ctx, groupID)
	if err != nil {
		return nil, internalError("list join requests", err)
	}
	return reqs, nil
}

// Approve admits the requesting user and marks the request approved. The
// membership write and the status transition land together: if the admit
// fails (capacity filled since the request was created, user joined some
// other way), the request stays pending and the error reports why.
func (w *RequestWorkflow) Approve(ctx context.Context, requestID, callerID primitive.ObjectID) (models.JoinRequest, error) {
	req, g, err := w.load(ctx, requestID, callerID)
	if err != nil {
		return models.JoinRequest{}, err
	}

	// Pre-check for a friendly error; the admit path re-checks atomically.
	if !admission.HasCapacity(len(g.MemberIDs), g.MaxMembers) {
		return models.JoinRequest{}, ErrGroupFull
	}

	processedAt := w.e.now().UTC()
	err = w.e.sess.WithTransaction(ctx, func(ctx context.Context) error {
		if err := w.e.admitMember(ctx, req.GroupID, req.UserID); err != nil {
			return err
		}
		if err := w.e.requests.MarkProcessed(ctx, req.ID, models.RequestApproved, callerID, processedAt); err != nil {
			if errors.Is(err, ErrConditionFailed) {
				return ErrRequestProcessed
			}
			return err
		}
		return nil
	})
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return models.JoinRequest{}, le
		}
		return models.JoinRequest{}, internalError("approve join request", err)
	}

	w.e.events.Publish(Event{GroupID: req.GroupID, UserID: req.UserID, Action: models.ActionJoined})
	w.e.log.Info("join request approved",
		zap.String("request_id", req.ID.Hex()),
		zap.String("group_id", req.GroupID.Hex()),
		zap.String("user_id", req.UserID.Hex()))

	req.Status = models.RequestApproved
	req.ProcessedAt = &processedAt
	req.ProcessedByID = &callerID
	return req, nil
}

// Decline marks the request declined without touching membership.
func (w *RequestWorkflow) Decline(ctx context.Context, requestID, callerID primitive.ObjectID) (models.JoinRequest, error) {
	req, _, err := w.load(ctx, requestID, callerID)
	if err != nil {
		return models.JoinRequest{}, err
	}

	processedAt := w.e.now().UTC()
	if err := w.e.requests.MarkProcessed(ctx, req.ID, models.RequestDeclined, callerID, processedAt); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return models.JoinRequest{}, ErrRequestProcessed
		}
		return models.JoinRequest{}, internalError("decline join request", err)
	}

	w.e.log.Info("join request declined",
		zap.String("request_id", req.ID.Hex()),
		zap.String("group_id", req.GroupID.Hex()))

	req.Status = models.RequestDeclined
	req.ProcessedAt = &processedAt
	req.ProcessedByID = &callerID
	return req, nil
}

// load fetches the request, verifies it is still pending, and verifies the
// caller owns the group the request references. Ownership comes from the
// group document looked up by the request's own group id.
func (w *RequestWorkflow) load(ctx context.Context, requestID, callerID primitive.ObjectID) (models.JoinRequest, models.Group, error) {
	req, err := w.e.requests.GetByID(ctx, requestID)
	if err != nil {
		if isNoDocuments(err) {
			return models.JoinRequest{}, models.Group{}, ErrRequestNotFound
		}
		return models.JoinRequest{}, models.Group{}, internalError("load join request", err)
	}
	if req.Status != models.RequestPending {
		return models.JoinRequest{}, models.Group{}, ErrRequestProcessed
	}

	g, err := w.e.getGroup(ctx, req.GroupID)
	if err != nil {
		return models.JoinRequest{}, models.Group{}, err
	}
	if !admission.IsOwner(g, callerID) {
		return models.JoinRequest{}, models.Group{}, ErrNotOwner
	}
	return req, g, nil
}
