// Package callback encodes and decodes inline button payloads.
//
// Payloads have the form <kind>:<action>[:<id>[:<id>]]. Buttons rendered by
// older deployments used underscore separated payloads where the number of
// separators told withdraw decisions apart from proof decisions; those are
// still accepted by ParseLegacy.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownPayload = errors.New("unknown callback payload")

type Kind string

const (
	KindProof    Kind = "proof"
	KindWithdraw Kind = "withdraw"
	KindTask     Kind = "task"
	KindAdmin    Kind = "admin"
)

type Action string

const (
	ActionSubmit     Action = "submit"
	ActionDone       Action = "done"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDelete     Action = "delete"
	ActionAddTask    Action = "add_task"
	ActionRemoveTask Action = "remove_task"
	ActionUsers      Action = "users"
	ActionWithdraws  Action = "withdraws"
)

const sep = ":"

// Payload is a decoded button press. UserID and TaskID are zero when the
// action does not carry them.
type Payload struct {
	Kind   Kind
	Action Action
	UserID int64
	TaskID int64
}

func ProofSubmit(taskID int64) Payload {
	return Payload{Kind: KindProof, Action: ActionSubmit, TaskID: taskID}
}

func ProofDone() Payload { return Payload{Kind: KindProof, Action: ActionDone} }

func ProofApprove(userID, taskID int64) Payload {
	return Payload{Kind: KindProof, Action: ActionApprove, UserID: userID, TaskID: taskID}
}

func ProofReject(userID, taskID int64) Payload {
	return Payload{Kind: KindProof, Action: ActionReject, UserID: userID, TaskID: taskID}
}

func WithdrawApprove(userID int64) Payload {
	return Payload{Kind: KindWithdraw, Action: ActionApprove, UserID: userID}
}

func WithdrawReject(userID int64) Payload {
	return Payload{Kind: KindWithdraw, Action: ActionReject, UserID: userID}
}

func TaskDelete(taskID int64) Payload {
	return Payload{Kind: KindTask, Action: ActionDelete, TaskID: taskID}
}

func Admin(action Action) Payload { return Payload{Kind: KindAdmin, Action: action} }

// AdminOnly reports whether only the admin may trigger the payload.
func (p Payload) AdminOnly() bool {
	if p.Kind == KindProof {
		return p.Action != ActionSubmit && p.Action != ActionDone
	}
	return true
}

// String encodes the payload as button callback data.
func (p Payload) String() string {
	parts := []string{string(p.Kind), string(p.Action)}
	switch {
	case p.Kind == KindProof && p.Action == ActionSubmit, p.Kind == KindTask:
		parts = append(parts, strconv.FormatInt(p.TaskID, 10))
	case p.Kind == KindProof && (p.Action == ActionApprove || p.Action == ActionReject):
		parts = append(parts, strconv.FormatInt(p.UserID, 10), strconv.FormatInt(p.TaskID, 10))
	case p.Kind == KindWithdraw:
		parts = append(parts, strconv.FormatInt(p.UserID, 10))
	}
	return strings.Join(parts, sep)
}

// Decode accepts both the structured and the legacy form.
func Decode(data string) (Payload, error) {
	if strings.Contains(data, sep) {
		return Parse(data)
	}
	return ParseLegacy(data)
}

// Parse decodes the structured <kind>:<action>[:<id>[:<id>]] form.
func Parse(data string) (Payload, error) {
	parts := strings.Split(data, sep)
	if len(parts) < 2 {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
	}
	p := Payload{Kind: Kind(parts[0]), Action: Action(parts[1])}
	ids, err := parseIDs(parts[2:])
	if err != nil {
		return Payload{}, fmt.Errorf("parse %q: %w", data, err)
	}

	switch {
	case p.Kind == KindProof && p.Action == ActionSubmit && len(ids) == 1:
		p.TaskID = ids[0]
	case p.Kind == KindProof && p.Action == ActionDone && len(ids) == 0:
	case p.Kind == KindProof && (p.Action == ActionApprove || p.Action == ActionReject) && len(ids) == 2:
		p.UserID, p.TaskID = ids[0], ids[1]
	case p.Kind == KindWithdraw && (p.Action == ActionApprove || p.Action == ActionReject) && len(ids) == 1:
		p.UserID = ids[0]
	case p.Kind == KindTask && p.Action == ActionDelete && len(ids) == 1:
		p.TaskID = ids[0]
	case p.Kind == KindAdmin && len(ids) == 0 && isAdminAction(p.Action):
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
	}
	return p, nil
}

// ParseLegacy decodes underscore payloads. approve_<u>_<t> and reject_<u>_<t>
// (two separators) are proof decisions; approve_<u> and reject_<u> (one
// separator) are withdraw decisions.
func ParseLegacy(data string) (Payload, error) {
	switch data {
	case "done_already":
		return ProofDone(), nil
	case "add_task", "remove_task", "users", "withdraws":
		return Admin(Action(data)), nil
	}

	parts := strings.Split(data, "_")
	if len(parts) < 2 {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
	}

	switch parts[0] {
	case "proof":
		id, err := parseID(parts[1])
		if err != nil {
			return Payload{}, fmt.Errorf("parse %q: %w", data, err)
		}
		return ProofSubmit(id), nil
	case "del":
		id, err := parseID(parts[1])
		if err != nil {
			return Payload{}, fmt.Errorf("parse %q: %w", data, err)
		}
		return TaskDelete(id), nil
	case "approve", "reject":
		ids, err := parseIDs(parts[1:])
		if err != nil {
			return Payload{}, fmt.Errorf("parse %q: %w", data, err)
		}
		action := Action(parts[0])
		switch len(ids) {
		case 1:
			return Payload{Kind: KindWithdraw, Action: action, UserID: ids[0]}, nil
		case 2:
			return Payload{Kind: KindProof, Action: action, UserID: ids[0], TaskID: ids[1]}, nil
		}
	}
	return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
}

func isAdminAction(a Action) bool {
	switch a {
	case ActionAddTask, ActionRemoveTask, ActionUsers, ActionWithdraws:
		return true
	}
	return false
}

func parseIDs(parts []string) ([]int64, error) {
	ids := make([]int64, 0, len(parts))
	for _, s := range parts {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", ErrUnknownPayload, s)
	}
	return id, nil
}
