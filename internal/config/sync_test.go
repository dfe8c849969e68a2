// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests keep the Go Config struct and the embedded CUE schema in step.
// A field present on one side only would be silently dropped or rejected
// when a config file is loaded.

// extractCUEFields returns the top-level field names of a CUE struct.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		fields[strings.TrimSuffix(sel.String(), "?")] = iter.IsOptional()
	}
	return fields
}

// extractGoJSONTags returns the JSON names of a struct's exported fields.
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = true
		if mapped := field.Tag.Get("mapstructure"); mapped != name {
			t.Errorf("field %s: mapstructure tag %q differs from json tag %q", field.Name, mapped, name)
		}
	}
	return fields
}

func assertFieldsSync(t *testing.T, structName string, cueFields, goFields map[string]bool) {
	t.Helper()

	for field := range cueFields {
		if !goFields[field] {
			t.Errorf("[%s] CUE field %q not found in Go struct (missing JSON tag)", structName, field)
		}
	}
	for field := range goFields {
		if _, exists := cueFields[field]; !exists {
			t.Errorf("[%s] Go JSON tag %q not found in CUE schema (missing CUE field)", structName, field)
		}
	}
}

func getCUESchema(t *testing.T) cue.Value {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	return schema
}

func lookupDefinition(t *testing.T, schema cue.Value, path string) cue.Value {
	t.Helper()

	def := schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		t.Fatalf("failed to lookup CUE path %s: %v", path, def.Err())
	}
	return def
}

// lookupField returns the value of a struct field, optional fields included.
func lookupField(t *testing.T, val cue.Value, name string) cue.Value {
	t.Helper()

	iter, err := val.Fields(cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	for iter.Next() {
		if strings.TrimSuffix(iter.Selector().String(), "?") == name {
			return iter.Value()
		}
	}
	t.Fatalf("CUE field %s not found", name)
	return cue.Value{}
}

// validateCUE unifies cueData with #Config and reports any violation.
func validateCUE(t *testing.T, cueData string) error {
	t.Helper()

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		t.Fatalf("failed to compile schema: %v", schemaValue.Err())
	}
	userValue := ctx.CompileString(cueData)
	if userValue.Err() != nil {
		return fmt.Errorf("CUE compile error: %w", userValue.Err())
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE validation error: %w", err)
	}
	return nil
}

func TestConfigSchemaSync(t *testing.T) {
	schema := getCUESchema(t)
	cueFields := extractCUEFields(t, lookupDefinition(t, schema, "#Config"))
	goFields := extractGoJSONTags(t, reflect.TypeFor[Config]())

	assertFieldsSync(t, "Config", cueFields, goFields)
}

func TestUIConfigSchemaSync(t *testing.T) {
	schema := getCUESchema(t)
	cueFields := extractCUEFields(t, lookupField(t, lookupDefinition(t, schema, "#Config"), "ui"))
	goFields := extractGoJSONTags(t, reflect.TypeFor[UIConfig]())

	assertFieldsSync(t, "UIConfig", cueFields, goFields)
}

// TestGeneratedConfigMatchesSchema checks that the file written by
// 'cybermorph-env config init' is accepted by the schema it is loaded with.
func TestGeneratedConfigMatchesSchema(t *testing.T) {
	if err := validateCUE(t, GenerateCUE(DefaultConfig())); err != nil {
		t.Errorf("generated config rejected by schema: %v", err)
	}
}

func TestEnvDirConstraints(t *testing.T) {
	tests := []struct {
		name    string
		cueData string
		wantErr bool
	}{
		{name: "empty string rejected", cueData: `env_dir: ""`, wantErr: true},
		{name: "project dir rejected", cueData: `env_dir: "."`, wantErr: true},
		{name: "project dir with slash rejected", cueData: `env_dir: "./"`, wantErr: true},
		{name: "parent dir rejected", cueData: `env_dir: ".."`, wantErr: true},
		{name: "parent dir with slash rejected", cueData: `env_dir: "../"`, wantErr: true},
		{name: "default accepted", cueData: `env_dir: ".venv"`, wantErr: false},
		{name: "sibling accepted", cueData: `env_dir: "../app-env"`, wantErr: false},
		{name: "absolute accepted", cueData: `env_dir: "/var/lib/cybermorph/venv"`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCUE(t, tt.cueData)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
