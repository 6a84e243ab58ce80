package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcat/internal/cli/output"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/spf13/cobra"
)

// Description is the structured shape of the describe command.
type Description struct {
	Kind         core.Kind          `json:"kind" yaml:"kind"`
	Name         string             `json:"name" yaml:"name"`
	Comment      string             `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes   []AttributeInfo    `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Declarations *core.Declarations `json:"declarations,omitempty" yaml:"declarations,omitempty"`
}

// AttributeInfo is one column or type attribute.
type AttributeInfo struct {
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

type declared interface {
	Declarations(ctx context.Context) core.Declarations
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <[schema.]object>",
		Short: "Show the attributes and declarations of one object",
		Long: `Show the columns of a table or view, the attributes of a type, and the
variables, procedures, functions and nested types declared in a package or
object type specification.`,
		Example: `  # Columns of a table
  leapcat describe HR.EMPLOYEES

  # Routines of a package
  leapcat describe HR.EMP_PKG --kind package`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(cmd)
			if err != nil {
				return err
			}
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return printDescription(cmd.Context(), cmdCtx, args[0], kind)
		},
	}
	cmd.Flags().StringP("kind", "k", "", "Object kind (searched when omitted)")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)
	return cmd
}

func printDescription(ctx context.Context, cmdCtx *CommandContext, ref string, kind core.Kind) error {
	obj, err := cmdCtx.Object(ctx, ref, kind)
	if err != nil {
		return err
	}

	desc, err := describe(ctx, obj)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(desc)
	}
	renderDescription(r, desc)
	return nil
}

func describe(ctx context.Context, obj core.Named) (*Description, error) {
	desc := &Description{Kind: obj.Kind(), Name: obj.Name(), Comment: comment(obj)}
	caps := obj.Kind().Capabilities()

	if ha, ok := obj.(core.HasAttributes); ok && caps.Attributes {
		attrs, err := ha.Attributes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load attributes of %s: %w", obj.Name(), err)
		}
		for _, a := range attrs {
			desc.Attributes = append(desc.Attributes, AttributeInfo{
				Position: a.Ordinal(),
				Name:     a.Name(),
				Type:     a.TypeName(),
				Nullable: a.Nullable(),
				Comment:  a.Comment(),
			})
		}
	}

	if d, ok := obj.(declared); ok && caps.Methods {
		decls := d.Declarations(ctx)
		desc.Declarations = &decls
	}
	return desc, nil
}

func renderDescription(r *output.Renderer, d *Description) {
	r.Header(1, fmt.Sprintf("%s %s", d.Kind, d.Name))
	if d.Comment != "" {
		r.Println(d.Comment)
		r.Println("")
	}

	if len(d.Attributes) > 0 {
		rows := make([][]string, len(d.Attributes))
		for i, a := range d.Attributes {
			null := "NOT NULL"
			if a.Nullable {
				null = ""
			}
			rows[i] = []string{strconv.Itoa(a.Position), a.Name, a.Type, null, a.Comment}
		}
		r.Header(2, "Attributes")
		r.Table([]string{"#", "Name", "Type", "Null", "Comment"}, rows)
	}

	if d.Declarations == nil {
		return
	}
	decls := d.Declarations
	if decls.IsEmpty() {
		r.Println("(no declarations)")
		return
	}

	if len(decls.Variables) > 0 {
		rows := make([][]string, len(decls.Variables))
		for i, v := range decls.Variables {
			rows[i] = []string{v.Name, v.Type}
		}
		r.Header(2, "Variables")
		r.Table([]string{"Name", "Type"}, rows)
	}
	if len(decls.Procedures) > 0 {
		rows := make([][]string, len(decls.Procedures))
		for i, p := range decls.Procedures {
			rows[i] = []string{p.Name, signature(p.Params)}
		}
		r.Header(2, "Procedures")
		r.Table([]string{"Name", "Parameters"}, rows)
	}
	if len(decls.Functions) > 0 {
		rows := make([][]string, len(decls.Functions))
		for i, f := range decls.Functions {
			params := f.Params
			if len(params) > 0 && params[0].IsReturn {
				params = params[1:]
			}
			rows[i] = []string{f.Name, signature(params), f.ReturnType()}
		}
		r.Header(2, "Functions")
		r.Table([]string{"Name", "Parameters", "Returns"}, rows)
	}
	if len(decls.NestedTypes) > 0 {
		rows := make([][]string, len(decls.NestedTypes))
		for i, nt := range decls.NestedTypes {
			rows[i] = []string{nt.Name}
		}
		r.Header(2, "Types")
		r.Table([]string{"Name"}, rows)
	}
}

func signature(params []core.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strings.Join(strings.Fields(p.Name+" "+p.Mode+" "+p.Type), " ")
	}
	return strings.Join(parts, ", ")
}
