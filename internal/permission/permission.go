// Package permission holds the task write-authorization rules. Every
// role-based decision about tasks is made here so the rule table can be
// read and tested in one place.
package permission

import (
	"sort"

	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
)

// Field names a client-updatable task attribute, spelled as in request bodies.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldAssignee    Field = "assignee"
	FieldDueDate     Field = "dueDate"
	FieldTags        Field = "tags"
)

// UpdatableFields is the full set of task fields a request may change.
var UpdatableFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPriority,
	FieldAssignee,
	FieldDueDate,
	FieldTags,
}

var (
	ErrNotAuthorizedToUpdate = apierrors.ForbiddenError("You are not authorized to update this task")
	ErrStatusOnly            = apierrors.ForbiddenError("Members can only update task status")
	ErrNotAuthorizedToDelete = apierrors.ForbiddenError("You are not authorized to delete this task")
)

// Capability is a single permission over a task.
type Capability uint8

const (
	CapUpdateAnyField Capability = 1 << iota
	CapUpdateStatus
	CapDelete
)

// CapabilitySet is a bitmask of capabilities.
type CapabilitySet uint8

const elevated = CapabilitySet(CapUpdateAnyField | CapUpdateStatus | CapDelete)

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// ManagerScope controls how far a Manager's elevated access reaches.
type ManagerScope string

const (
	// ManagerScopeGlobal grants every global Manager elevated access to
	// every task in the system.
	ManagerScopeGlobal ManagerScope = "global"
	// ManagerScopeProject grants elevated access only inside projects the
	// user owns or holds a Manager or Admin project role in.
	ManagerScopeProject ManagerScope = "project"
)

// ParseManagerScope maps a config value to a scope, defaulting to global.
func ParseManagerScope(s string) ManagerScope {
	if ManagerScope(s) == ManagerScopeProject {
		return ManagerScopeProject
	}
	return ManagerScopeGlobal
}

// rule computes the capabilities one global role has over one task.
type rule interface {
	capabilities(user *models.User, task *models.Task, rel Relationship) CapabilitySet
}

type adminRule struct{}

func (adminRule) capabilities(*models.User, *models.Task, Relationship) CapabilitySet {
	return elevated
}

type managerRule struct{}

func (managerRule) capabilities(*models.User, *models.Task, Relationship) CapabilitySet {
	return elevated
}

// participantRule gives the assignee and the reporter status rights, and
// the reporter alone delete rights.
type participantRule struct{}

func (participantRule) capabilities(user *models.User, task *models.Task, _ Relationship) CapabilitySet {
	var caps CapabilitySet
	if task.IsAssignee(user.ID) || task.IsReporter(user.ID) {
		caps |= CapabilitySet(CapUpdateStatus)
	}
	if task.IsReporter(user.ID) {
		caps |= CapabilitySet(CapDelete)
	}
	return caps
}

// projectAuthorityRule elevates users who run the task's project and falls
// back to participant rights otherwise.
type projectAuthorityRule struct{}

func (projectAuthorityRule) capabilities(user *models.User, task *models.Task, rel Relationship) CapabilitySet {
	if rel.HasProjectAuthority() {
		return elevated
	}
	return participantRule{}.capabilities(user, task, rel)
}

type denyRule struct{}

func (denyRule) capabilities(*models.User, *models.Task, Relationship) CapabilitySet {
	return 0
}

// Policy evaluates task mutations against the role rule table.
type Policy struct {
	scope ManagerScope
	rules map[models.Role]rule
}

// NewPolicy builds the rule table for the given manager scope.
func NewPolicy(scope ManagerScope) *Policy {
	p := &Policy{
		scope: scope,
		rules: map[models.Role]rule{
			models.RoleAdmin:   adminRule{},
			models.RoleManager: managerRule{},
			models.RoleMember:  participantRule{},
		},
	}
	if scope == ManagerScopeProject {
		p.rules[models.RoleManager] = projectAuthorityRule{}
		p.rules[models.RoleMember] = projectAuthorityRule{}
	}
	return p
}

// Scope returns the manager scope the policy was built with.
func (p *Policy) Scope() ManagerScope {
	return p.scope
}

// Capabilities returns what user may do to task.
func (p *Policy) Capabilities(user *models.User, task *models.Task, rel Relationship) CapabilitySet {
	r, ok := p.rules[user.Role]
	if !ok {
		r = denyRule{}
	}
	return r.capabilities(user, task, rel)
}

// AuthorizeUpdate decides whether user may apply an update touching the
// requested fields. On success it returns the requested fields that are
// updatable, sorted; unknown fields are dropped. rel is only consulted when
// the policy is project scoped.
func (p *Policy) AuthorizeUpdate(user *models.User, task *models.Task, rel Relationship, requested []string) ([]Field, error) {
	caps := p.Capabilities(user, task, rel)

	if !caps.Has(CapUpdateAnyField) {
		if !caps.Has(CapUpdateStatus) {
			return nil, ErrNotAuthorizedToUpdate
		}
		for _, name := range requested {
			if Field(name) != FieldStatus {
				return nil, ErrStatusOnly
			}
		}
	}

	return filterUpdatable(requested), nil
}

// AuthorizeDelete decides whether user may delete task. Being the assignee
// is not enough.
func (p *Policy) AuthorizeDelete(user *models.User, task *models.Task, rel Relationship) error {
	if !p.Capabilities(user, task, rel).Has(CapDelete) {
		return ErrNotAuthorizedToDelete
	}
	return nil
}

func filterUpdatable(requested []string) []Field {
	known := make(map[Field]struct{}, len(UpdatableFields))
	for _, f := range UpdatableFields {
		known[f] = struct{}{}
	}

	seen := make(map[Field]struct{}, len(requested))
	fields := make([]Field, 0, len(requested))
	for _, name := range requested {
		f := Field(name)
		if _, ok := known[f]; !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
