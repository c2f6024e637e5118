package config

import (
	"dynconf/internal/fixer"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// Metadata describes one field together with its current values.
type Metadata struct {
	Path        string
	Type        schema.Type
	Format      schema.FormatKind
	Fixer       string
	Required    bool
	Nullable    bool
	Editable    bool
	HasDefault  bool
	Default     any
	Bounds      schema.Bounds
	Length      schema.Length
	Options     []any
	Rule        string
	Description string
	UIHint      string
	UIExtra     map[string]any

	// Active is the value in the active tree; nil when absent.
	Active any
	// Saved is the value in the backing file when HasSaved is set.
	Saved    any
	HasSaved bool
}

// Metadata returns the declaration of the field at path and its active,
// default and saved values.
func (i *Instance) Metadata(path string) (Metadata, error) {
	snap := i.state.Load()

	f, err := snap.schema.Field(path)
	if err != nil {
		return Metadata{}, err
	}

	family, _ := fixer.Select(f)

	md := Metadata{
		Path:        path,
		Type:        f.Type,
		Fixer:       family.String(),
		Required:    f.Required,
		Nullable:    f.Nullable,
		Editable:    checkEditable(snap.schema, path) == nil,
		HasDefault:  f.HasDefault(),
		Default:     f.Default,
		Bounds:      f.Bounds,
		Length:      f.Length,
		Options:     f.Options,
		Rule:        f.Rule,
		Description: f.Description,
		UIHint:      f.UIHint,
		UIExtra:     f.UIExtra,
	}

	if f.Format != nil {
		md.Format = f.Format.Kind()
	}

	if v, err := tree.Get(snap.active, path); err == nil {
		md.Active = tree.Normalize(v)
	}

	if i.Persistent() {
		if saved, err := i.loadFile(snap); err == nil {
			if v, err := tree.Get(saved, path); err == nil {
				md.Saved, md.HasSaved = v, true
			}
		}
	}

	return md, nil
}
