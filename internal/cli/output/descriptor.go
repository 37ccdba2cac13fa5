package output

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// ExplainOutput is the machine-readable form of an explained resolution.
type ExplainOutput struct {
	Descriptor core.BuildDescriptor `json:"descriptor" yaml:"descriptor"`
	Sources    map[string]string    `json:"sources" yaml:"sources"`
}

// FailureOutput is the machine-readable form of a failed resolution.
type FailureOutput struct {
	Valid  bool   `json:"valid" yaml:"valid"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty"`
	Error  string `json:"error" yaml:"error"`
}

// FieldInfo is the machine-readable form of one schema field.
type FieldInfo struct {
	Key         string `json:"key" yaml:"key"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Env         string `json:"env" yaml:"env"`
	Flag        string `json:"flag" yaml:"flag"`
	Default     any    `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

// Descriptor renders a resolved descriptor. When sources is non-nil the
// layer that supplied each value is shown as well.
func (r *Renderer) Descriptor(d core.BuildDescriptor, sources map[string]string) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		if sources != nil {
			return r.JSON(ExplainOutput{Descriptor: d, Sources: sources})
		}
		return r.JSON(d)
	case ModeYAML:
		if sources != nil {
			return r.YAML(ExplainOutput{Descriptor: d, Sources: sources})
		}
		return r.YAML(d)
	case ModeMarkdown:
		r.Header("build descriptor")
		r.Println(descriptorTable(d, sources).RenderMarkdown())
		return nil
	default:
		return r.descriptorText(d, sources)
	}
}

func (r *Renderer) descriptorText(d core.BuildDescriptor, sources map[string]string) error {
	r.Header("build descriptor")
	if sources != nil {
		t := descriptorTable(d, sources)
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		return nil
	}

	fields := d.Fields()
	width := 0
	for _, kv := range fields {
		width = max(width, len(kv.Key))
	}
	for _, kv := range fields {
		r.Println(FormatKeyValue(kv.Key, kv.Value, width))
	}
	return nil
}

func descriptorTable(d core.BuildDescriptor, sources map[string]string) table.Writer {
	t := table.NewWriter()
	if sources != nil {
		t.AppendHeader(table.Row{"Key", "Value", "Source"})
	} else {
		t.AppendHeader(table.Row{"Key", "Value"})
	}
	for _, kv := range d.Fields() {
		if sources != nil {
			src := sources[kv.Key]
			if src == "" {
				src = "derived"
			}
			t.AppendRow(table.Row{kv.Key, kv.Value, src})
			continue
		}
		t.AppendRow(table.Row{kv.Key, kv.Value})
	}
	return t
}

// ValidationFailure renders a failed resolution. Non-validation errors are
// rendered with only the message.
func (r *Renderer) ValidationFailure(err error) error {
	out := FailureOutput{Error: err.Error()}
	if ve, ok := resolve.AsValidationError(err); ok {
		out.Kind = ve.Kind.String()
		out.Key = ve.Key
		out.Source = ve.Source
		out.Value = ve.Value
	}

	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(out)
	case ModeYAML:
		return r.YAML(out)
	default:
		r.Error("invalid build configuration")
		if out.Kind != "" {
			r.Printf("  kind:   %s\n", out.Kind)
			r.Printf("  key:    %s\n", out.Key)
			if out.Source != "" {
				r.Printf("  source: %s\n", out.Source)
			}
			if out.Value != nil {
				r.Printf("  value:  %v\n", out.Value)
			}
		}
		r.Printf("  error:  %s\n", out.Error)
		return nil
	}
}

// Valid renders a successful validation.
func (r *Renderer) Valid(d core.BuildDescriptor) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(map[string]any{"valid": true, "applicationId": d.ApplicationID})
	case ModeYAML:
		return r.YAML(map[string]any{"valid": true, "applicationId": d.ApplicationID})
	default:
		r.Success(fmt.Sprintf("%s is valid (platform %d..%d, compile %d, %s signing)",
			d.ApplicationID, d.MinPlatformVersion, d.TargetPlatformVersion,
			d.CompilePlatformVersion, d.SigningProfile))
		return nil
	}
}

// NewFieldInfos pairs schema fields with their default values.
func NewFieldInfos(fields []resolve.Field, defaults resolve.Values) []FieldInfo {
	infos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		infos = append(infos, FieldInfo{
			Key:         f.Key,
			Type:        f.Type.String(),
			Required:    f.Required,
			Env:         f.Env(),
			Flag:        "--" + f.Flag(),
			Default:     defaults[f.Key],
			Description: f.Description,
		})
	}
	return infos
}

// Fields renders the schema listing.
func (r *Renderer) Fields(infos []FieldInfo) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(infos)
	case ModeYAML:
		return r.YAML(infos)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Key", "Type", "Required", "Default", "Env", "Flag"})
	for _, info := range infos {
		t.AppendRow(table.Row{
			info.Key,
			info.Type,
			strconv.FormatBool(info.Required),
			formatDefault(info.Default),
			info.Env,
			info.Flag,
		})
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Header("build properties")
		r.Println(t.RenderMarkdown())
		return nil
	}
	t.SetStyle(table.StyleLight)
	r.Header("build properties")
	r.Println(t.Render())
	return nil
}

func formatDefault(v any) string {
	if s, ok := v.(string); ok && s == "" {
		return "-"
	}
	return fmt.Sprint(v)
}
