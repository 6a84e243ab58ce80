// Package ddl assembles descriptive DDL text for catalog objects.
//
// An assembled text is the primary declaration returned by the backend's
// metadata function, followed by dependent object fragments (foreign keys,
// triggers, indexes), a grants section and comment statements. Every step is
// best-effort: a failing step is logged and its fragment omitted. When only
// the primary declaration cannot be fetched, a structural declaration built
// from the in-memory object model takes its place.
package ddl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Result column names.
const (
	ColDDL       = "DDL"
	ColGrantee   = "GRANTEE"
	ColPrivilege = "PRIVILEGE"
)

// FallbackTag marks structural DDL built without the backend metadata function.
const FallbackTag = "-- best-effort: structural DDL built from cached metadata"

// Format controls how much detail GetDDL emits.
type Format string

// Formats.
const (
	// FormatCompact omits comments and grants.
	FormatCompact Format = "compact"
	// FormatDefault adds comments.
	FormatDefault Format = "default"
	// FormatFull adds comments and grants.
	FormatFull Format = "full"
)

// ParseFormat validates a format name. An empty name means FormatDefault.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDefault, nil
	case FormatCompact, FormatDefault, FormatFull:
		return f, nil
	default:
		return "", fmt.Errorf("unknown DDL format %q (expected compact, default or full)", s)
	}
}

// Options tunes one GetDDL call.
type Options struct {
	// StorageClauses keeps segment and storage attributes in the primary text.
	StorageClauses  bool
	SkipForeignKeys bool
	SkipTriggers    bool
	SkipIndexes     bool
	// Baseline holds, per principal, the privileges considered default. Only
	// grants beyond the baseline are emitted.
	Baseline map[string][]Privilege
}

func (o Options) skips(dep core.DependentKind) bool {
	switch dep {
	case core.DependentForeignKeys:
		return o.SkipForeignKeys
	case core.DependentTriggers:
		return o.SkipTriggers
	case core.DependentIndexes:
		return o.SkipIndexes
	}
	return false
}

// key fingerprints the options for the memo.
func (o Options) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%t/%t/%t/%t", o.StorageClauses, o.SkipForeignKeys, o.SkipTriggers, o.SkipIndexes)
	principals := make([]string, 0, len(o.Baseline))
	for p := range o.Baseline {
		principals = append(principals, p)
	}
	slices.Sort(principals)
	for _, p := range principals {
		privs := canonical(o.Baseline[p])
		fmt.Fprintf(&b, "|%s=%v", p, privs)
	}
	return b.String()
}

// Dictionary renders the backend requests the assembler issues.
// A request with empty SQL is unsupported and treated as a failed step.
type Dictionary interface {
	// Transform returns setup statements applied before the primary fetch.
	Transform(opts Options) []query.Request
	// Primary fetches the declaration of one object into the DDL column.
	Primary(kind core.Kind, schema, name string) query.Request
	// Dependent fetches the DDL of one kind of dependent objects of a table.
	Dependent(dep core.DependentKind, kind core.Kind, schema, name string) query.Request
	// Grants lists GRANTEE and PRIVILEGE pairs on one object.
	Grants(kind core.Kind, schema, name string) query.Request
}

// PrincipalSource enumerates the users and roles of the database.
type PrincipalSource interface {
	Principals(ctx context.Context) ([]*catalog.Principal, error)
}

// AlwaysExcluded lists the principals never included in a grants section.
var AlwaysExcluded = []string{"SYS", "SYSTEM", "DBA"}

// Config holds the collaborators of an Assembler.
type Config struct {
	Exec       query.Executor
	Dictionary Dictionary
	Principals PrincipalSource
	// Excluded adds principals to AlwaysExcluded.
	Excluded   []string
	Normalizer ident.Normalizer
	Logger     *slog.Logger
}

// Assembler builds and memoizes DDL text.
type Assembler struct {
	exec       query.Executor
	dict       Dictionary
	principals PrincipalSource
	excluded   map[string]bool
	quote      func(string) string
	logger     *slog.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	variant string
	text    string
}

// NewAssembler creates an assembler.
// If cfg.Logger is nil, a discard logger is used.
func NewAssembler(cfg Config) *Assembler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = ident.Verbatim{}
	}
	excluded := make(map[string]bool)
	for _, p := range slices.Concat(AlwaysExcluded, cfg.Excluded) {
		excluded[ident.Fold(p)] = true
	}
	return &Assembler{
		exec:       cfg.Exec,
		dict:       cfg.Dictionary,
		principals: cfg.Principals,
		excluded:   excluded,
		quote:      cfg.Normalizer.Quote,
		logger:     cfg.Logger,
		memo:       make(map[string]memoEntry),
	}
}

// GetDDL returns the DDL text of obj. It fails only when neither the primary
// declaration nor the structural fallback can be produced.
func (a *Assembler) GetDDL(ctx context.Context, obj core.Named, format Format, opts Options) (string, error) {
	objKey := objectKey(obj)
	variant := string(format) + "#" + opts.key()

	a.mu.Lock()
	if e, ok := a.memo[objKey]; ok && e.variant == variant {
		a.mu.Unlock()
		return e.text, nil
	}
	a.mu.Unlock()

	text, err := a.assemble(ctx, obj, format, opts)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.memo[objKey] = memoEntry{variant: variant, text: text}
	a.mu.Unlock()
	return text, nil
}

// Invalidate drops the memoized text of one object.
func (a *Assembler) Invalidate(obj core.Named) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.memo, objectKey(obj))
}

// Reset drops every memoized text.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memo = make(map[string]memoEntry)
}

func (a *Assembler) assemble(ctx context.Context, obj core.Named, format Format, opts Options) (string, error) {
	schema := schemaOf(obj)
	name := core.QualifiedName(schema, obj.Name())
	log := a.logger.With(slog.String("object", name), slog.String("kind", string(obj.Kind())))

	// 1. transform parameters
	for _, req := range a.dict.Transform(opts) {
		if req.Unsupported() {
			continue
		}
		if err := a.exec.Exec(ctx, req); err != nil {
			log.Warn("DDL transform failed", slog.String("error", err.Error()))
		}
	}

	var parts []string

	// 2. primary declaration, or the structural fallback
	primary, err := a.fetchText(ctx, a.dict.Primary(obj.Kind(), schema, obj.Name()))
	if err != nil {
		log.Warn("primary DDL unavailable, using structural fallback", slog.String("error", err.Error()))
		fallback, ferr := a.structural(ctx, obj, schema)
		if ferr != nil {
			return "", fmt.Errorf("DDL for %s: %w", name, errors.Join(err, ferr))
		}
		primary = fallback
	}
	parts = append(parts, primary)

	// 3. dependent objects
	if deps, ok := obj.(core.HasDependencies); ok {
		for _, dep := range []core.DependentKind{core.DependentForeignKeys, core.DependentTriggers, core.DependentIndexes} {
			if opts.skips(dep) || !deps.HasDependents(ctx, dep) {
				continue
			}
			text, err := a.fetchText(ctx, a.dict.Dependent(dep, obj.Kind(), schema, obj.Name()))
			if err != nil {
				log.Warn("dependent DDL unavailable", slog.String("dependent", string(dep)), slog.String("error", err.Error()))
				continue
			}
			parts = append(parts, text)
		}
	}

	// 4. grants
	if format == FormatFull {
		grants, err := a.grants(ctx, obj, schema, opts)
		if err != nil {
			log.Warn("grants unavailable", slog.String("error", err.Error()))
		} else if grants != "" {
			parts = append(parts, grants)
		}
	}

	// 5. comments
	if format != FormatCompact {
		comments, err := a.comments(ctx, obj, schema)
		if err != nil {
			log.Warn("comments unavailable", slog.String("error", err.Error()))
		}
		if comments != "" {
			parts = append(parts, comments)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// fetchText runs req and concatenates the DDL column of every row.
func (a *Assembler) fetchText(ctx context.Context, req query.Request) (string, error) {
	if req.Unsupported() {
		return "", errors.New("not supported by this backend")
	}
	cur, err := a.exec.Query(ctx, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = cur.Close() }()

	var chunks []string
	for cur.Next() {
		text := strings.TrimSpace(cur.SafeString(ColDDL))
		if text != "" {
			chunks = append(chunks, text)
		}
	}
	if err := cur.Err(); err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", errors.New("no DDL returned")
	}
	return strings.Join(chunks, "\n\n"), nil
}

// structural builds "CREATE <KIND>" text from the object model.
func (a *Assembler) structural(ctx context.Context, obj core.Named, schema string) (string, error) {
	var b strings.Builder
	b.WriteString(FallbackTag)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "CREATE %s %s", obj.Kind(), a.qualified(schema, obj.Name()))

	if withAttrs, ok := obj.(core.HasAttributes); ok {
		attrs, err := withAttrs.Attributes(ctx)
		if err != nil {
			return "", err
		}
		if len(attrs) > 0 {
			b.WriteString(" (\n")
			for i, attr := range attrs {
				fmt.Fprintf(&b, "  %s %s", a.quote(attr.Name()), attr.TypeName())
				if !attr.Nullable() {
					b.WriteString(" NOT NULL")
				}
				if i < len(attrs)-1 {
					b.WriteByte(',')
				}
				b.WriteByte('\n')
			}
			b.WriteByte(')')
		}
	}
	b.WriteByte(';')
	return b.String(), nil
}

// comments renders COMMENT ON statements for the object and its attributes.
func (a *Assembler) comments(ctx context.Context, obj core.Named, schema string) (string, error) {
	if !obj.Kind().Capabilities().Comment {
		return "", nil
	}
	var lines []string
	target := a.qualified(schema, obj.Name())
	if c, ok := obj.(core.Commented); ok && c.Comment() != "" {
		lines = append(lines, fmt.Sprintf("COMMENT ON %s %s IS %s;", commentKind(obj.Kind()), target, literal(c.Comment())))
	}
	withAttrs, ok := obj.(core.HasAttributes)
	if !ok {
		return strings.Join(lines, "\n"), nil
	}
	attrs, err := withAttrs.Attributes(ctx)
	if err != nil {
		return strings.Join(lines, "\n"), err
	}
	for _, attr := range attrs {
		if attr.Comment() == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", target, a.quote(attr.Name()), literal(attr.Comment())))
	}
	return strings.Join(lines, "\n"), nil
}

// commentKind maps a kind to the COMMENT ON object keyword. Views share the
// TABLE keyword.
func commentKind(k core.Kind) string {
	switch k {
	case core.KindView:
		return string(core.KindTable)
	default:
		return string(k)
	}
}

func (a *Assembler) qualified(schema, name string) string {
	if schema == "" {
		return a.quote(name)
	}
	return a.quote(schema) + "." + a.quote(name)
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func schemaOf(obj core.Named) string {
	if o, ok := obj.(core.Owned); ok {
		return o.SchemaName()
	}
	return ""
}

func objectKey(obj core.Named) string {
	return string(obj.Kind()) + ":" + core.QualifiedName(schemaOf(obj), obj.Name())
}
