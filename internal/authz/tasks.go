package authz

import "taskhub/internal/models"

type Level int

const (
	LevelRead Level = iota + 1
	LevelWrite
)

// CanAccess decides read/write eligibility of requesterID on a task owned by
// ownerID. share is the requester's share row for that task, nil if none.
func CanAccess(ownerID, requesterID int64, share *models.SharedTask, level Level) bool {
	if ownerID == requesterID {
		return true
	}
	if share == nil || share.UserID != requesterID {
		return false
	}
	switch level {
	case LevelRead:
		return share.Permission == models.PermissionView || share.Permission == models.PermissionEdit
	case LevelWrite:
		return share.Permission == models.PermissionEdit
	}
	return false
}

// Rule is what an endpoint demands of the requester.
type Rule int

const (
	RuleOwnerOnly Rule = iota + 1
	RuleRead
	RuleWrite
)

func (r Rule) Allows(ownerID, requesterID int64, share *models.SharedTask) bool {
	switch r {
	case RuleOwnerOnly:
		return ownerID == requesterID
	case RuleRead:
		return CanAccess(ownerID, requesterID, share, LevelRead)
	case RuleWrite:
		return CanAccess(ownerID, requesterID, share, LevelWrite)
	}
	return false
}

// NeedsShare reports whether evaluating the rule for a non-owner requires the share row.
func (r Rule) NeedsShare() bool {
	return r == RuleRead || r == RuleWrite
}

type Action string

const (
	ActionView         Action = "view"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update-status"
	ActionDelete       Action = "delete"
	ActionShare        Action = "share"
	ActionComment      Action = "comment"
	ActionListComments Action = "list-comments"
)

type Policy map[Action]Rule

// TaskPolicy maps task endpoints to their rule.
//
// The generic update stays owner-only while status updates admit
// edit-sharers; edits through a share record follow CanEditViaShare.
var TaskPolicy = Policy{
	ActionView:         RuleRead,
	ActionUpdate:       RuleOwnerOnly,
	ActionUpdateStatus: RuleWrite,
	ActionDelete:       RuleOwnerOnly,
	ActionShare:        RuleOwnerOnly,
	ActionComment:      RuleRead,
	ActionListComments: RuleRead,
}

// Rule returns the rule for action; unknown actions are owner-only.
func (p Policy) Rule(action Action) Rule {
	if r, ok := p[action]; ok {
		return r
	}
	return RuleOwnerOnly
}

func (p Policy) Allows(action Action, ownerID, requesterID int64, share *models.SharedTask) bool {
	return p.Rule(action).Allows(ownerID, requesterID, share)
}

// CanEditViaShare is the rule behind updating a task through the
// requester's own share record.
func CanEditViaShare(share *models.SharedTask, requesterID int64) bool {
	return share != nil && share.UserID == requesterID && share.Permission == models.PermissionEdit
}

// CanRevokeShare allows the task owner or the shared user to remove a share.
func CanRevokeShare(ownerID, requesterID int64, share *models.SharedTask) bool {
	if share == nil {
		return false
	}
	return ownerID == requesterID || share.UserID == requesterID
}
