package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// LinkAction drives the staff link-request state machine.
type LinkAction string

const (
	LinkSend   LinkAction = "SEND"
	LinkAccept LinkAction = "ACCEPT"
	LinkReject LinkAction = "REJECT"
	LinkUnlink LinkAction = "UNLINK"
)

// LinkPayload carries one action over the pending-requests list.
type LinkPayload struct {
	Action    LinkAction `json:"action"`
	RequestID string     `json:"request_id"`
	StaffID   string     `json:"staff_id,omitempty"`
	StaffName string     `json:"staff_name,omitempty"`
	Role      string     `json:"role,omitempty"`
}

// linkRequest mutates pending requests and the assigned-staff list. ACCEPT
// flips the request and assigns the staff member, deduplicated by id.
type linkRequest struct{}

func (p *linkRequest) Type() model.DataType { return model.TypeLinkRequest }

func (p *linkRequest) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in LinkPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}

	switch in.Action {
	case LinkSend:
		exists := false
		for _, r := range a.PendingRequests {
			if r.ID == in.RequestID {
				exists = true
				break
			}
		}
		if !exists {
			a.PendingRequests = append(a.PendingRequests, model.LinkRequest{
				ID:        in.RequestID,
				StaffID:   in.StaffID,
				StaffName: in.StaffName,
				Role:      in.Role,
				Status:    model.LinkPending,
			})
		}

	case LinkAccept:
		req := settleRequest(a, in.RequestID, model.LinkAccepted)
		if req != nil {
			assigned := false
			for _, s := range a.AssignedStaff {
				if s.ID == req.StaffID {
					assigned = true
					break
				}
			}
			if !assigned {
				a.AssignedStaff = append(a.AssignedStaff, model.StaffRef{
					ID:   req.StaffID,
					Name: req.StaffName,
					Role: req.Role,
				})
			}
		}

	case LinkReject:
		settleRequest(a, in.RequestID, model.LinkRejected)

	case LinkUnlink:
		for i, s := range a.AssignedStaff {
			if s.ID == in.StaffID {
				a.AssignedStaff = append(a.AssignedStaff[:i], a.AssignedStaff[i+1:]...)
				break
			}
		}

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, in.Action)
	}
	a.UpdatedAt = time.Now()

	return Result{
		Athlete:   a,
		EventType: model.TypeLinkRequest,
		EventData: map[string]any{"action": string(in.Action), "requestId": in.RequestID},
	}, nil
}

func settleRequest(a *model.Athlete, id string, status model.LinkStatus) *model.LinkRequest {
	for i := range a.PendingRequests {
		if a.PendingRequests[i].ID == id {
			a.PendingRequests[i].Status = status
			return &a.PendingRequests[i]
		}
	}
	return nil
}
