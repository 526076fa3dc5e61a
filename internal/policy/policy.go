// Package policy holds the static role-to-action table used for authorization.
//
// Membership is flat and exact: there is no role hierarchy, an action is allowed only
// when the caller's role name is literally listed for it. The table is built once at
// startup and never mutated afterwards.
package policy

import "sort"

// Role names as stored in the roles table and carried in tokens.
const (
	RoleAdmin   = "Admin"
	RoleEncoder = "Encoder"
	RoleAuditor = "Auditor"
	RoleViewer  = "Viewer"
)

// Action identifies something a caller attempts to do.
type Action string

// Entity CRUD actions are derived as "<entity>.<verb>".
const (
	VerbView    = "view"
	VerbCreate  = "create"
	VerbUpdate  = "update"
	VerbDelete  = "delete"
	VerbRestore = "restore"
)

// Entities managed through the uniform CRUD surface.
const (
	Users          = "users"
	Roles          = "roles"
	Permissions    = "permissions"
	Pages          = "pages"
	Vessels        = "vessels"
	AuditCompanies = "audit_companies"
	AuditParties   = "audit_parties"
	AuditTypes     = "audit_types"
	Auditors       = "auditors"
	Audits         = "audits"
	Findings       = "findings"
)

const (
	FindingsClose  Action = "findings.close"
	FindingsReopen Action = "findings.reopen"
	EvidenceUpload Action = "evidence.upload"
	EvidenceDelete Action = "evidence.delete"
	SettingsView   Action = "settings.view"
	SettingsUpdate Action = "settings.update"
	DashboardView  Action = "dashboard.view"
	ActivityView   Action = "activity.view"
)

// For builds the CRUD action for an entity, e.g. For(Audits, VerbDelete) == "audits.delete".
func For(entity, verb string) Action {
	return Action(entity + "." + verb)
}

// Policy is an immutable action -> allowed roles table.
type Policy struct {
	rules map[Action]map[string]struct{}
}

// New copies rules into a Policy. Later changes to rules do not affect it.
func New(rules map[Action][]string) *Policy {
	p := &Policy{rules: make(map[Action]map[string]struct{}, len(rules))}
	for action, roles := range rules {
		set := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		p.rules[action] = set
	}
	return p
}

// Allows reports whether role may perform action. Unknown actions are denied.
func (p *Policy) Allows(role string, action Action) bool {
	set, ok := p.rules[action]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Roles returns the sorted role names allowed to perform action.
func (p *Policy) Roles(action Action) []string {
	set := p.rules[action]
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Actions returns every action known to the policy, sorted.
func (p *Policy) Actions() []Action {
	out := make([]Action, 0, len(p.rules))
	for a := range p.rules {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Default returns the production role table.
func Default() *Policy {
	everyone := []string{RoleAdmin, RoleEncoder, RoleAuditor, RoleViewer}
	writers := []string{RoleAdmin, RoleEncoder}
	fieldWriters := []string{RoleAdmin, RoleEncoder, RoleAuditor}
	admin := []string{RoleAdmin}

	rules := map[Action][]string{
		FindingsClose:  writers,
		FindingsReopen: admin,
		EvidenceUpload: fieldWriters,
		EvidenceDelete: writers,
		SettingsView:   everyone,
		SettingsUpdate: admin,
		DashboardView:  everyone,
		ActivityView:   admin,
	}

	// Access control data is administered by Admin only.
	for _, entity := range []string{Users, Roles, Permissions, Pages} {
		crud(rules, entity, admin, admin, admin)
	}
	for _, entity := range []string{Vessels, AuditCompanies, AuditParties, AuditTypes, Auditors, Audits} {
		crud(rules, entity, everyone, writers, admin)
	}
	crud(rules, Findings, everyone, fieldWriters, admin)

	return New(rules)
}

func crud(rules map[Action][]string, entity string, view, write, remove []string) {
	rules[For(entity, VerbView)] = view
	rules[For(entity, VerbCreate)] = write
	rules[For(entity, VerbUpdate)] = write
	rules[For(entity, VerbDelete)] = remove
	rules[For(entity, VerbRestore)] = remove
}
