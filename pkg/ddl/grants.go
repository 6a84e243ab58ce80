package ddl

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
)

// Privilege is an object-level privilege.
type Privilege string

// Object privileges in canonical order. PrivAll is the collapsed form.
const (
	PrivSelect     Privilege = "SELECT"
	PrivInsert     Privilege = "INSERT"
	PrivUpdate     Privilege = "UPDATE"
	PrivDelete     Privilege = "DELETE"
	PrivReferences Privilege = "REFERENCES"
	PrivAlter      Privilege = "ALTER"
	PrivIndex      Privilege = "INDEX"
	// PrivRead allows querying without locking, the privilege used for dumps.
	PrivRead Privilege = "READ"
	PrivAll  Privilege = "ALL"
)

// ObjectPrivileges returns every object privilege in canonical order.
func ObjectPrivileges() []Privilege {
	return []Privilege{PrivSelect, PrivInsert, PrivUpdate, PrivDelete, PrivReferences, PrivAlter, PrivIndex, PrivRead}
}

// ParsePrivilege maps a backend privilege name to a Privilege.
func ParsePrivilege(s string) (Privilege, bool) {
	p := Privilege(strings.ToUpper(strings.Join(strings.Fields(s), " ")))
	switch p {
	case "ALL PRIVILEGES":
		return PrivAll, true
	case "SELECT FOR DUMP":
		return PrivRead, true
	case PrivAll:
		return p, true
	}
	if slices.Contains(ObjectPrivileges(), p) {
		return p, true
	}
	return "", false
}

// canonical deduplicates privs into canonical order, expanding ALL.
func canonical(privs []Privilege) []Privilege {
	if slices.Contains(privs, PrivAll) {
		return ObjectPrivileges()
	}
	var out []Privilege
	for _, p := range ObjectPrivileges() {
		if slices.Contains(privs, p) {
			out = append(out, p)
		}
	}
	return out
}

// Delta returns the privileges in granted but not in baseline, in canonical
// order. A delta covering every object privilege collapses to [PrivAll].
func Delta(granted, baseline []Privilege) []Privilege {
	base := canonical(baseline)
	var out []Privilege
	for _, p := range canonical(granted) {
		if !slices.Contains(base, p) {
			out = append(out, p)
		}
	}
	if len(out) == len(ObjectPrivileges()) {
		return []Privilege{PrivAll}
	}
	return out
}

// grants renders one GRANT statement per non-excluded principal whose
// privileges on obj exceed its baseline.
func (a *Assembler) grants(ctx context.Context, obj core.Named, schema string, opts Options) (string, error) {
	if a.principals == nil {
		return "", nil
	}
	granted, err := a.fetchGrants(ctx, obj, schema)
	if err != nil {
		return "", err
	}
	principals, err := a.principals.Principals(ctx)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(principals))
	for _, p := range principals {
		if !a.excluded[ident.Fold(p.Name())] {
			names = append(names, p.Name())
		}
	}
	slices.SortFunc(names, func(x, y string) int { return strings.Compare(ident.Fold(x), ident.Fold(y)) })

	target := a.qualified(schema, obj.Name())
	var lines []string
	for _, name := range names {
		delta := Delta(granted[ident.Fold(name)], baselineFor(opts.Baseline, name))
		if len(delta) == 0 {
			continue
		}
		privs := make([]string, len(delta))
		for i, p := range delta {
			privs[i] = string(p)
		}
		lines = append(lines, fmt.Sprintf("GRANT %s ON %s TO %s;", strings.Join(privs, ", "), target, a.quote(name)))
	}
	return strings.Join(lines, "\n"), nil
}

// fetchGrants maps folded grantee names to their privileges on obj.
func (a *Assembler) fetchGrants(ctx context.Context, obj core.Named, schema string) (map[string][]Privilege, error) {
	out := make(map[string][]Privilege)
	req := a.dict.Grants(obj.Kind(), schema, obj.Name())
	if req.Unsupported() {
		return out, nil
	}
	cur, err := a.exec.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close() }()

	for cur.Next() {
		grantee := ident.Fold(cur.SafeString(ColGrantee))
		priv, ok := ParsePrivilege(cur.SafeString(ColPrivilege))
		if grantee == "" || !ok {
			continue
		}
		out[grantee] = append(out[grantee], priv)
	}
	return out, cur.Err()
}

func baselineFor(baseline map[string][]Privilege, principal string) []Privilege {
	for p, privs := range baseline {
		if ident.Fold(p) == ident.Fold(principal) {
			return privs
		}
	}
	return nil
}
