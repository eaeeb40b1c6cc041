// Package render holds output formatters for resolved documentation
// content. Formatters only lay out content the engine already decided.
package render

import (
	"fmt"
	"strings"

	"github.com/refdoc-tools/refdoc/internal/describe"
	"github.com/refdoc-tools/refdoc/internal/profile"
)

// Options adjust markdown output.
type Options struct {
	// ShowProfileRequirements adds the profile requirement column and
	// the conditional requirements blocks.
	ShowProfileRequirements bool
}

// Markdown renders sections as GitHub-flavored markdown.
type Markdown struct {
	opts Options
	buf  strings.Builder
}

// NewMarkdown creates a markdown renderer.
func NewMarkdown(opts Options) *Markdown {
	return &Markdown{opts: opts}
}

// Section implements describe.Renderer.
func (m *Markdown) Section(s *describe.Section) error {
	fmt.Fprintf(&m.buf, "## %s\n\n", s.Title)

	if s.Description != "" {
		fmt.Fprintf(&m.buf, "%s\n\n", s.Description)
	}

	if len(s.URIs) > 0 {
		m.buf.WriteString("**URIs:**\n\n")
		for _, uri := range s.URIs {
			fmt.Fprintf(&m.buf, "- %s\n", formatURI(uri))
		}
		m.buf.WriteString("\n")
	}

	if s.JSONPayload != "" {
		fmt.Fprintf(&m.buf, "```json\n%s\n```\n\n", strings.TrimSpace(s.JSONPayload))
	}

	if len(s.Rows) > 0 {
		m.writeHeader()
		for _, row := range s.Rows {
			m.writeRow(row, 0)
		}
		m.buf.WriteString("\n")
	}

	if len(s.Details) > 0 {
		m.buf.WriteString("### Property details\n\n")
		for _, detail := range s.Details {
			m.writeDetail(detail)
		}
	}

	if len(s.Actions) > 0 {
		m.buf.WriteString("### Actions\n\n")
		for _, action := range s.Actions {
			m.writeAction(action)
		}
	}

	if m.opts.ShowProfileRequirements && len(s.Conditionals) > 0 {
		m.buf.WriteString("### Conditional requirements\n\n")
		for _, cond := range s.Conditionals {
			m.writeConditional(cond)
		}
	}
	return nil
}

// CollectionsTable implements describe.Renderer.
func (m *Markdown) CollectionsTable(entries []describe.CollectionEntry) error {
	m.buf.WriteString("## Collections\n\n")
	m.buf.WriteString("| Collection Type | URIs |\n")
	m.buf.WriteString("| --- | --- |\n")
	for _, entry := range entries {
		uris := make([]string, len(entry.URIs))
		for i, uri := range entry.URIs {
			uris[i] = formatURI(uri)
		}
		fmt.Fprintf(&m.buf, "| %s | %s |\n", entry.Name, strings.Join(uris, "<br>"))
	}
	m.buf.WriteString("\n")
	return nil
}

// Document implements describe.Renderer.
func (m *Markdown) Document() (string, error) {
	return m.buf.String(), nil
}

func (m *Markdown) writeHeader() {
	if m.opts.ShowProfileRequirements {
		m.buf.WriteString("| Property | Type | Requirement | Notes |\n")
		m.buf.WriteString("| --- | --- | --- | --- |\n")
		return
	}
	m.buf.WriteString("| Property | Type | Attributes | Notes |\n")
	m.buf.WriteString("| --- | --- | --- | --- |\n")
}

func (m *Markdown) writeRow(p *describe.Property, depth int) {
	name := strings.Repeat("&nbsp;&nbsp;&nbsp;", depth) + "**" + p.Name + "**"
	if p.Version != "" {
		name += " *(v" + p.Version + "+)*"
	}
	if p.Deprecated != "" {
		name += " *(deprecated v" + p.Deprecated + ")*"
	}

	third := m.attributes(p)
	if m.opts.ShowProfileRequirements {
		third = m.profileAccess(p)
	}

	fmt.Fprintf(&m.buf, "| %s | %s | %s | %s |\n", name, typeColumn(p), third, notes(p))

	for _, child := range p.Children {
		m.writeRow(child, depth+1)
	}
	for _, item := range p.Items {
		m.writeRow(item, depth+1)
	}
}

func (m *Markdown) attributes(p *describe.Property) string {
	var attrs []string
	if p.ReadOnly {
		attrs = append(attrs, "read-only")
	} else {
		attrs = append(attrs, "read-write")
	}
	if p.Required {
		attrs = append(attrs, "required")
	}
	if p.RequiredOnCreate {
		attrs = append(attrs, "required on create")
	}
	if p.RequiredParameter {
		attrs = append(attrs, "required parameter")
	}
	if p.Units != "" {
		attrs = append(attrs, "units: "+p.Units)
	}
	return strings.Join(attrs, ",<br>")
}

// profileAccess mirrors the requirement column of profile-driven
// output: read and write requirements, plus a minimum count.
func (m *Markdown) profileAccess(p *describe.Property) string {
	if !p.InProfile {
		return ""
	}
	readReq := requirementText(p.ProfileReadReq)
	var access string
	switch {
	case p.ReadOnly:
		access = readReq + " (Read-only)"
	case p.ProfileReadReq == p.ProfileWriteReq:
		access = readReq + " (Read/Write)"
	case p.ProfileWriteReq == "":
		access = readReq + " (Read)"
	default:
		access = readReq + " (Read)<br>" + requirementText(p.ProfileWriteReq) + " (Read/Write)"
	}
	if p.ProfileMinCount > 0 {
		access += fmt.Sprintf("<br>Minimum %d", p.ProfileMinCount)
	}
	return access
}

func (m *Markdown) writeDetail(d *describe.Detail) {
	fmt.Fprintf(&m.buf, "#### %s\n\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&m.buf, "%s\n\n", d.Description)
	}
	if len(d.Enum) == 0 {
		return
	}
	if len(d.EnumDescriptions) > 0 {
		m.buf.WriteString("| Value | Description |\n")
		m.buf.WriteString("| --- | --- |\n")
		for _, value := range d.Enum {
			fmt.Fprintf(&m.buf, "| %s | %s |\n", value, d.EnumDescriptions[value])
		}
	} else {
		m.buf.WriteString("| Value |\n")
		m.buf.WriteString("| --- |\n")
		for _, value := range d.Enum {
			fmt.Fprintf(&m.buf, "| %s |\n", value)
		}
	}
	m.buf.WriteString("\n")
}

func (m *Markdown) writeAction(a *describe.ActionDetail) {
	fmt.Fprintf(&m.buf, "#### %s\n\n", a.Name)
	if a.Description != "" {
		fmt.Fprintf(&m.buf, "%s\n\n", a.Description)
	}
	if len(a.Parameters) == 0 {
		m.buf.WriteString("This action takes no parameters.\n\n")
		return
	}
	m.buf.WriteString("The following table shows the parameters for the action which are included in the POST body to the URI shown in the \"target\" property of the Action.\n\n")
	m.writeHeader()
	for _, param := range a.Parameters {
		m.writeRow(param, 0)
	}
	m.buf.WriteString("\n")
}

func (m *Markdown) writeConditional(c *describe.ConditionalDetail) {
	fmt.Fprintf(&m.buf, "#### %s\n\n", c.PropName)
	m.buf.WriteString("| Condition | Requirement | Purpose |\n")
	m.buf.WriteString("| --- | --- | --- |\n")
	for _, req := range c.Requirements {
		if req.BaseRequirement {
			continue
		}
		fmt.Fprintf(&m.buf, "| %s | %s | %s |\n",
			conditionText(req), conditionalAccess(req), req.Purpose)
	}
	m.buf.WriteString("\n")
}

func conditionText(req *profile.ConditionalRequirement) string {
	var desc string
	if len(req.SubordinateToResource) > 0 {
		quoted := make([]string, len(req.SubordinateToResource))
		for i, res := range req.SubordinateToResource {
			quoted[i] = `"` + res + `"`
		}
		desc = "Resource instance is subordinate to " + strings.Join(quoted, " from ")
	}
	if req.CompareProperty != "" {
		compareTo := req.CompareType
		switch compareTo {
		case "Equal", "LessThanOrEqual", "GreaterThanOrEqual", "NotEqual":
			compareTo += " to"
		}
		if desc != "" {
			desc += " and "
		}
		desc += `"` + req.CompareProperty + `" is ` + compareTo
		if len(req.CompareValues) > 0 {
			quoted := make([]string, len(req.CompareValues))
			for i, v := range req.CompareValues {
				quoted[i] = `"` + v + `"`
			}
			desc += " " + strings.Join(quoted, ", ")
		}
	}
	return desc
}

func conditionalAccess(req *profile.ConditionalRequirement) string {
	readReq := requirementText(req.ReadRequirement)
	if readReq == "" {
		readReq = "Mandatory"
	}
	access := readReq + " (Read)"
	if req.WriteRequirement != "" {
		access += "<br>" + requirementText(req.WriteRequirement) + " (Read/Write)"
	}
	if req.MinCount > 0 {
		access += fmt.Sprintf("<br>Minimum %d", req.MinCount)
	}
	if req.Comparison != "" && len(req.Values) > 0 {
		quoted := make([]string, len(req.Values))
		for i, v := range req.Values {
			quoted[i] = `"` + v + `"`
		}
		access += ", must be " + req.Comparison + " " + strings.Join(quoted, ", ")
	}
	return access
}

// requirementText maps requirement tokens to display English.
func requirementText(req string) string {
	switch req {
	case "IfImplemented":
		return "If Implemented"
	case "Conditional":
		return "Conditional Requirements"
	default:
		return req
	}
}

func typeColumn(p *describe.Property) string {
	types := strings.Join(p.Types, ", ")
	if p.IsArray && p.ItemList != "" {
		types = "array (" + p.ItemList + ")"
	} else if p.IsArray && p.ArrayOfObjects {
		types = "array"
	}
	if p.Nullable {
		if types == "" {
			types = "null"
		} else {
			types += " (null)"
		}
	}
	return types
}

func notes(p *describe.Property) string {
	note := p.Description
	if p.AddLinkText != "" {
		if note != "" {
			note += " "
		}
		note += p.AddLinkText
	}
	if p.Deprecated != "" && p.DeprecatedExplanation != "" {
		if note != "" {
			note += " "
		}
		note += "Deprecated: " + p.DeprecatedExplanation
	}
	return note
}

// formatURI italicizes templated segments of a URI.
func formatURI(uri string) string {
	parts := strings.Split(uri, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			parts[i] = "*" + part + "*"
		}
	}
	return strings.Join(parts, "/")
}
