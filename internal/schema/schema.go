// Package schema validates request payloads against the embedded JSON Schemas.
package schema

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var files embed.FS

const baseURL = "https://dashboard.local/schemas/"

// Names of the embedded schemas.
const (
	Login          = "login.json"
	Register       = "register.json"
	Event          = "event.json"
	TodoList       = "todo_list.json"
	TodoItemCreate = "todo_item_create.json"
	TodoItemUpdate = "todo_item_update.json"
)

type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	names, err := fs.Glob(files, "schemas/*.json")
	if err != nil {
		return nil, err
	}
	for _, p := range names {
		data, err := files.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(baseURL+path.Base(p), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", p, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, p := range names {
		name := path.Base(p)
		s, err := compiler.Compile(baseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// MustNew is New for package initialisation; the schemas are embedded so a
// failure is a build defect.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks doc, a value decoded from JSON into any, against the named
// schema. Failures are *jsonschema.ValidationError.
func (v *Validator) Validate(name string, doc any) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	return s.Validate(doc)
}
