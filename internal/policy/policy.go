// Package policy holds the role capability table consulted by every workflow operation.
package policy

import "github.com/sooryaakilesh10/place-pro-platform-88/internal/models"

// Operation is an action gated by role.
type Operation string

const (
	OpCreate        Operation = "CREATE"
	OpDirectEdit    Operation = "DIRECT_EDIT"
	OpDelete        Operation = "DELETE"
	OpApprove       Operation = "APPROVE"
	OpReject        Operation = "REJECT"
	OpAssignOfficer Operation = "ASSIGN_OFFICER"
	OpViewReports   Operation = "VIEW_REPORTS"
	OpProposeEdit   Operation = "PROPOSE_EDIT"
	OpManageUsers   Operation = "MANAGE_USERS"
	OpManageEvents  Operation = "MANAGE_EVENTS"
	OpViewEvents    Operation = "VIEW_EVENTS"
)

type capabilities map[Operation]struct{}

func grant(ops ...Operation) capabilities {
	set := make(capabilities, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

// Privileged operations shared by Admin and Manager.
var privileged = []Operation{
	OpCreate, OpDirectEdit, OpDelete, OpApprove, OpReject,
	OpAssignOfficer, OpViewReports, OpProposeEdit,
	OpManageEvents, OpViewEvents,
}

var table = map[models.Role]capabilities{
	models.RoleAdmin:   grant(append([]Operation{OpManageUsers}, privileged...)...),
	models.RoleManager: grant(privileged...),
	models.RoleOfficer: grant(OpProposeEdit, OpViewEvents),
}

// Allows reports whether role may perform op. Unknown roles are denied.
func Allows(role models.Role, op Operation) bool {
	caps, ok := table[role]
	if !ok {
		return false
	}
	_, ok = caps[op]
	return ok
}

// Operations lists the operations granted to role, in table order.
func Operations(role models.Role) []Operation {
	all := append([]Operation{OpManageUsers}, privileged...)
	granted := make([]Operation, 0, len(all))
	for _, op := range all {
		if Allows(role, op) {
			granted = append(granted, op)
		}
	}
	return granted
}

// Privileged reports whether the role edits records directly instead of proposing.
func Privileged(role models.Role) bool {
	return Allows(role, OpDirectEdit)
}
