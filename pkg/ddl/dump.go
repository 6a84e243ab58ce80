package ddl

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/progress"
)

// Fragment is the DDL of one object in a dump, or the error that prevented it.
type Fragment struct {
	Kind   core.Kind
	Schema string
	Name   string
	Text   string
	Err    error
}

// QualifiedName returns schema.name of the fragment's object.
func (f Fragment) QualifiedName() string {
	return core.QualifiedName(f.Schema, f.Name)
}

// Render returns the fragment text, or an inline error marker.
func (f Fragment) Render() string {
	if f.Err != nil {
		return fmt.Sprintf("-- ERROR: %s: %s", f.QualifiedName(), f.Err)
	}
	return f.Text
}

// DumpResult holds the fragments of a dump in input order.
type DumpResult struct {
	Fragments []Fragment
	// Canceled is set when the dump stopped before the last object.
	Canceled bool
}

// Failed returns the number of fragments carrying an error.
func (r *DumpResult) Failed() int {
	n := 0
	for _, f := range r.Fragments {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Render joins every fragment, failures marked inline.
func (r *DumpResult) Render() string {
	parts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		parts[i] = f.Render()
	}
	return strings.Join(parts, "\n\n")
}

// Dump assembles the DDL of objs in order. The monitor is polled before each
// object; on cancellation the fragments accumulated so far are returned with
// Canceled set. Per-object failures are recorded in their fragment.
func (a *Assembler) Dump(ctx context.Context, objs []core.Named, format Format, opts Options, mon progress.Monitor) *DumpResult {
	mon = progress.OrNop(mon)
	res := &DumpResult{Fragments: make([]Fragment, 0, len(objs))}
	for _, obj := range objs {
		if mon.IsCanceled() {
			res.Canceled = true
			break
		}
		f := Fragment{Kind: obj.Kind(), Schema: schemaOf(obj), Name: obj.Name()}
		mon.SubTask(fmt.Sprintf("Generating DDL of %s %s", f.Kind, f.QualifiedName()))
		f.Text, f.Err = a.GetDDL(ctx, obj, format, opts)
		res.Fragments = append(res.Fragments, f)
		mon.Worked(1)
	}
	return res
}
