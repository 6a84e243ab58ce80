package catalog

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// Trigger is a table or schema trigger.
type Trigger struct {
	object
	table  Ref
	timing string
	event  string
	body   string
}

var _ core.SourceObject = (*Trigger)(nil)

// Kind returns core.KindTrigger.
func (t *Trigger) Kind() core.Kind { return core.KindTrigger }

// TableRef returns the key of the table the trigger fires on. It is zero for
// schema and database triggers.
func (t *Trigger) TableRef() Ref { return t.table }

// Timing returns BEFORE, AFTER or INSTEAD OF.
func (t *Trigger) Timing() string { return t.timing }

// Event returns the triggering event (INSERT OR UPDATE, ...).
func (t *Trigger) Event() string { return t.event }

// Source returns the trigger body.
func (t *Trigger) Source(context.Context) (string, error) { return t.body, nil }

// Sequence is a number generator.
type Sequence struct {
	object
	minValue  int64
	maxValue  string
	increment int64
	cycle     bool
	lastValue int64
}

// Kind returns core.KindSequence.
func (s *Sequence) Kind() core.Kind { return core.KindSequence }

// MinValue returns the lower bound.
func (s *Sequence) MinValue() int64 { return s.minValue }

// MaxValue returns the upper bound as text; backends report values beyond int64.
func (s *Sequence) MaxValue() string { return s.maxValue }

// Increment returns the step.
func (s *Sequence) Increment() int64 { return s.increment }

// Cycle reports whether the sequence wraps around.
func (s *Sequence) Cycle() bool { return s.cycle }

// LastValue returns the last number handed out, or the cache high-water mark.
func (s *Sequence) LastValue() int64 { return s.lastValue }

// Synonym is an alias for another object.
type Synonym struct {
	object
	target *LazyRef
	dbLink string
}

// Kind returns core.KindSynonym.
func (s *Synonym) Kind() core.Kind { return core.KindSynonym }

// Target returns the lazy reference to the aliased object.
func (s *Synonym) Target() *LazyRef { return s.target }

// DBLink returns the database link of a remote synonym.
func (s *Synonym) DBLink() string { return s.dbLink }

// TargetName returns the display name of the target, degrading to the raw
// identifier when it can not be resolved.
func (s *Synonym) TargetName(ctx context.Context) string {
	name := s.target.Display(ctx)
	if s.dbLink != "" {
		name += "@" + s.dbLink
	}
	return name
}

// DBLink is a database link.
type DBLink struct {
	object
	username string
	host     string
}

// Kind returns core.KindDBLink.
func (l *DBLink) Kind() core.Kind { return core.KindDBLink }

// Username returns the remote user.
func (l *DBLink) Username() string { return l.username }

// Host returns the connect string.
func (l *DBLink) Host() string { return l.host }

// Domain is a named data type with constraints.
type Domain struct {
	object
	dataType     string
	defaultValue string
	condition    string
}

// Kind returns core.KindDomain.
func (d *Domain) Kind() core.Kind { return core.KindDomain }

// DataType returns the base type.
func (d *Domain) DataType() string { return d.dataType }

// Default returns the default expression.
func (d *Domain) Default() string { return d.defaultValue }

// Condition returns the check condition.
func (d *Domain) Condition() string { return d.condition }

// Operator is a user-defined operator.
type Operator struct {
	object
	bindings int
}

// Kind returns core.KindOperator.
func (o *Operator) Kind() core.Kind { return core.KindOperator }

// Bindings returns the number of operand bindings.
func (o *Operator) Bindings() int { return o.bindings }

// Principal is a user or role that can hold privileges.
type Principal struct {
	name   string
	isRole bool
}

// Name returns the principal name.
func (p *Principal) Name() string { return p.name }

// Kind returns core.KindPrincipal.
func (p *Principal) Kind() core.Kind { return core.KindPrincipal }

// IsRole reports whether the principal is a role.
func (p *Principal) IsRole() bool { return p.isRole }
