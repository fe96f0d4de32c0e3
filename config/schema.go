package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/orthomerge/errors"
)

//go:embed schema.json
var layerSchemaJSON []byte

// Schema returns the JSON schema every configuration layer must satisfy.
func Schema() []byte {
	return layerSchemaJSON
}

// validateLayer checks one raw configuration layer against the embedded schema.
func validateLayer(path string, raw map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(layerSchemaJSON),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return errors.WrapFatal(err, "config", "validateLayer", "schema validation")
	}

	if !result.Valid() {
		var b strings.Builder
		fmt.Fprintf(&b, "%s does not match the configuration schema:", path)
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "\n  - %s: %s", desc.Field(), desc.Description())
		}
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, b.String()),
			"config", "validateLayer", "schema validation")
	}
	return nil
}
