package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_FixedActions(t *testing.T) {
	p := Default()

	assert.Equal(t, []string{RoleAdmin}, p.Roles(For(Audits, VerbDelete)))
	assert.Equal(t, []string{RoleAdmin, RoleEncoder}, p.Roles(For(Audits, VerbCreate)))
	assert.Equal(t, []string{RoleAdmin, RoleEncoder}, p.Roles(FindingsClose))
	assert.Equal(t, []string{RoleAdmin}, p.Roles(FindingsReopen))
	assert.Equal(t, []string{RoleAdmin}, p.Roles(For(Users, VerbView)))
}

func TestAllows_ExactMembership(t *testing.T) {
	p := Default()

	assert.True(t, p.Allows(RoleAdmin, For(Audits, VerbDelete)))
	assert.False(t, p.Allows(RoleEncoder, For(Audits, VerbDelete)))
	assert.True(t, p.Allows(RoleViewer, For(Vessels, VerbView)))
	assert.False(t, p.Allows(RoleViewer, For(Vessels, VerbCreate)))

	// No case folding and no hierarchy.
	assert.False(t, p.Allows("admin", For(Audits, VerbDelete)))
	assert.False(t, p.Allows("SuperAdmin", For(Audits, VerbDelete)))
	assert.False(t, p.Allows("", DashboardView))
}

func TestAllows_UnknownActionDenied(t *testing.T) {
	p := Default()
	assert.False(t, p.Allows(RoleAdmin, Action("ledger.post")))
	assert.Empty(t, p.Roles(Action("ledger.post")))
}

func TestNew_CopiesRules(t *testing.T) {
	rules := map[Action][]string{"x.do": {RoleAdmin}}
	p := New(rules)

	rules["x.do"][0] = RoleViewer
	rules["y.do"] = []string{RoleViewer}

	assert.True(t, p.Allows(RoleAdmin, "x.do"))
	assert.False(t, p.Allows(RoleViewer, "x.do"))
	assert.False(t, p.Allows(RoleViewer, "y.do"))
}

func TestDefault_EveryCRUDEntityCovered(t *testing.T) {
	p := Default()
	entities := []string{Users, Roles, Permissions, Pages, Vessels, AuditCompanies, AuditParties, AuditTypes, Auditors, Audits, Findings}
	verbs := []string{VerbView, VerbCreate, VerbUpdate, VerbDelete, VerbRestore}
	for _, e := range entities {
		for _, v := range verbs {
			assert.True(t, p.Allows(RoleAdmin, For(e, v)), "admin should be allowed %s", For(e, v))
		}
	}
}
