package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// documentSchema describes the shape of a configuration file. Semantic rules
// that need defaults applied first live in Validate.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "warmup": {"type": "integer", "minimum": 1},
    "count": {"type": "integer", "minimum": 1},
    "timeout": {"type": "string"},
    "window": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "width": {"type": "integer", "minimum": 1},
        "height": {"type": "integer", "minimum": 1},
        "title": {"type": "string"},
        "headless": {"type": "boolean"}
      }
    },
    "chart": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "title": {"type": "string"},
        "subtitle": {"type": "string"},
        "xRange": {"$ref": "#/definitions/range"},
        "zRange": {"$ref": "#/definitions/range"},
        "colorRange": {"$ref": "#/definitions/range"},
        "dimensions": {
          "type": "object",
          "additionalProperties": false,
          "required": ["width", "height", "depth"],
          "properties": {
            "width": {"type": "number", "exclusiveMinimum": 0},
            "height": {"type": "number", "exclusiveMinimum": 0},
            "depth": {"type": "number", "exclusiveMinimum": 0}
          }
        },
        "samples": {"type": "integer", "minimum": 1},
        "drawFaceOutlines": {"type": "boolean"},
        "lowColor": {"$ref": "#/definitions/color"},
        "highColor": {"$ref": "#/definitions/color"}
      }
    },
    "viewPoint": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "azimuthStep": {"type": "number"},
        "elevationStep": {"type": "number"},
        "distance": {"type": "number", "exclusiveMinimum": 0},
        "roll": {"type": "number"}
      }
    },
    "thresholds": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "frame_time": {"$ref": "#/definitions/expressions"},
        "fps": {"$ref": "#/definitions/expressions"},
        "elapsed": {"$ref": "#/definitions/expressions"}
      }
    }
  },
  "definitions": {
    "range": {
      "type": "object",
      "additionalProperties": false,
      "required": ["min", "max"],
      "properties": {
        "min": {"type": "number"},
        "max": {"type": "number"}
      }
    },
    "color": {"type": "string", "pattern": "^#?[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"},
    "expressions": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", strings.NewReader(documentSchema)); err != nil {
		panic(fmt.Sprintf("config: invalid document schema: %v", err))
	}
	compiledSchema = compiler.MustCompile("config.schema.json")
}

// DocumentErrors lists schema violations found in a configuration file.
type DocumentErrors []error

func (de DocumentErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("config document does not match schema: ")
	for i, err := range de {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ValidateDocument checks a raw configuration file against the document
// schema. The format is chosen from the path extension as in ParseConfig.
func ValidateDocument(data []byte, path string) error {
	var doc interface{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".toml":
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
		doc = m
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if doc == nil {
		doc = map[string]interface{}{}
	}

	// Round-trip through encoding/json so numbers and maps have the types
	// the schema validator expects regardless of the source format.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to normalize config document: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(normalized, &value); err != nil {
		return fmt.Errorf("failed to normalize config document: %w", err)
	}

	if err := compiledSchema.Validate(value); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return extractValidationErrors(ve)
		}
		return err
	}
	return nil
}

func extractValidationErrors(err *jsonschema.ValidationError) DocumentErrors {
	var errs DocumentErrors
	if len(err.Causes) == 0 && err.Message != "" {
		errs = append(errs, fmt.Errorf("at %s: %s", locationOrRoot(err.InstanceLocation), err.Message))
	}
	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}
	return errs
}

func locationOrRoot(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
