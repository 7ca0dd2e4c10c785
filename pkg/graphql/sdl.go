// SDL rendering: turns an introspected schema into printable schema text.
// Output is deterministic for identical input. Types, fields, and enum
// values are emitted in introspection order with two-space indentation.
package graphql

import (
	"fmt"
	"strings"
)

// Scalars every GraphQL implementation provides; redeclaring them in SDL
// is invalid.
var builtinScalars = map[string]bool{
	"String": true, "Int": true, "Float": true, "Boolean": true, "ID": true,
}

// Directives every GraphQL implementation defines; redeclaring them is invalid.
var builtinDirectives = map[string]bool{
	"skip": true, "include": true, "deprecated": true, "specifiedBy": true, "oneOf": true,
}

// RenderSDL renders an introspected schema as SDL text.
func RenderSDL(schema *Schema) string {
	var sb strings.Builder

	if block := renderSchemaBlock(schema); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n")
	}

	for _, d := range schema.Directives {
		if builtinDirectives[d.Name] {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		renderDirective(&sb, d)
	}

	for _, t := range schema.Types {
		if strings.HasPrefix(t.Name, "__") {
			continue
		}
		if t.Kind == "SCALAR" && builtinScalars[t.Name] {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		renderType(&sb, t)
	}

	return sb.String()
}

// renderSchemaBlock emits the schema definition only when a root type name
// deviates from the conventional Query/Mutation/Subscription.
func renderSchemaBlock(schema *Schema) string {
	q := refName(schema.QueryType)
	m := refName(schema.MutationType)
	s := refName(schema.SubscriptionType)

	conventional := (q == "" || q == "Query") &&
		(m == "" || m == "Mutation") &&
		(s == "" || s == "Subscription")
	if conventional {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("schema {\n")
	if q != "" {
		fmt.Fprintf(&sb, "  query: %s\n", q)
	}
	if m != "" {
		fmt.Fprintf(&sb, "  mutation: %s\n", m)
	}
	if s != "" {
		fmt.Fprintf(&sb, "  subscription: %s\n", s)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func renderType(sb *strings.Builder, t Type) {
	writeDescription(sb, t.Description, "")

	switch t.Kind {
	case "OBJECT":
		fmt.Fprintf(sb, "type %s%s {\n", t.Name, renderInterfaces(t.Interfaces))
		renderFields(sb, t.Fields)
		sb.WriteString("}\n")
	case "INTERFACE":
		fmt.Fprintf(sb, "interface %s%s {\n", t.Name, renderInterfaces(t.Interfaces))
		renderFields(sb, t.Fields)
		sb.WriteString("}\n")
	case "UNION":
		members := make([]string, 0, len(t.PossibleTypes))
		for _, pt := range t.PossibleTypes {
			members = append(members, pt.Name)
		}
		fmt.Fprintf(sb, "union %s = %s\n", t.Name, strings.Join(members, " | "))
	case "ENUM":
		fmt.Fprintf(sb, "enum %s {\n", t.Name)
		for _, ev := range t.EnumValues {
			writeDescription(sb, ev.Description, "  ")
			fmt.Fprintf(sb, "  %s%s\n", ev.Name, renderDeprecation(ev.IsDeprecated, ev.DeprecationReason))
		}
		sb.WriteString("}\n")
	case "INPUT_OBJECT":
		fmt.Fprintf(sb, "input %s {\n", t.Name)
		for _, f := range t.InputFields {
			writeDescription(sb, f.Description, "  ")
			fmt.Fprintf(sb, "  %s\n", renderInputValue(f))
		}
		sb.WriteString("}\n")
	case "SCALAR":
		fmt.Fprintf(sb, "scalar %s\n", t.Name)
	}
}

func renderInterfaces(refs []TypeRef) string {
	if len(refs) == 0 {
		return ""
	}
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return " implements " + strings.Join(names, " & ")
}

func renderFields(sb *strings.Builder, fields []Field) {
	for _, f := range fields {
		writeDescription(sb, f.Description, "  ")
		fmt.Fprintf(sb, "  %s%s: %s%s\n",
			f.Name, renderArgs(f.Args), renderFieldType(&f.Type),
			renderDeprecation(f.IsDeprecated, f.DeprecationReason))
	}
}

func renderArgs(args []InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, renderInputValue(a))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func renderInputValue(v InputValue) string {
	s := v.Name + ": " + renderFieldType(&v.Type)
	if v.DefaultValue != "" {
		s += " = " + v.DefaultValue
	}
	return s
}

// renderFieldType unwraps the NON_NULL/LIST reference chain into SDL notation,
// e.g. [String!]!.
func renderFieldType(ft *FieldType) string {
	if ft == nil {
		return ""
	}
	switch ft.Kind {
	case "NON_NULL":
		return renderFieldType(ft.OfType) + "!"
	case "LIST":
		return "[" + renderFieldType(ft.OfType) + "]"
	default:
		return ft.Name
	}
}

func renderDeprecation(deprecated bool, reason string) string {
	if !deprecated {
		return ""
	}
	if reason == "" {
		return " @deprecated"
	}
	return fmt.Sprintf(" @deprecated(reason: %q)", reason)
}

func renderDirective(sb *strings.Builder, d Directive) {
	writeDescription(sb, d.Description, "")
	fmt.Fprintf(sb, "directive @%s%s on %s\n", d.Name, renderArgs(d.Args), strings.Join(d.Locations, " | "))
}

// writeDescription emits a block-string description at the given indent.
func writeDescription(sb *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	// A description containing the block-string terminator would break the
	// output; escape it.
	desc = strings.ReplaceAll(desc, `"""`, `\"\"\"`)

	if !strings.Contains(desc, "\n") {
		fmt.Fprintf(sb, "%s\"\"\"%s\"\"\"\n", indent, desc)
		return
	}
	fmt.Fprintf(sb, "%s\"\"\"\n", indent)
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(sb, "%s%s\n", indent, line)
	}
	fmt.Fprintf(sb, "%s\"\"\"\n", indent)
}

func refName(r *TypeRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}
