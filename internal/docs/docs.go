// Package docs builds the OpenAPI 2.0 document of the API from the resource
// schemas and registers it with swag for gin-swagger to serve.
package docs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/swaggo/swag"

	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/pkg/fieldmap"
)

// Info describes the API in the document header.
type Info struct {
	Title       string
	Description string
	Version     string
	BasePath    string
}

// DefaultInfo is used by Register.
var DefaultInfo = Info{
	Title:       "University Records API",
	Description: "CRUD API over students, departments, faculty, courses and enrollments. Every response is an envelope carrying the payload and the SQL statements executed to produce it.",
	Version:     "1.0",
	BasePath:    "/",
}

type document struct {
	raw string
}

func (d document) ReadDoc() string {
	return d.raw
}

var registerOnce sync.Once

// Register builds the document for schemas and registers it under the
// default swag instance. Only the first call has an effect.
func Register(schemas []models.Schema) error {
	var err error
	registerOnce.Do(func() {
		var raw []byte
		raw, err = json.Marshal(Build(DefaultInfo, schemas))
		if err != nil {
			return
		}
		swag.Register(swag.Name, document{raw: string(raw)})
	})
	return err
}

// Build returns the OpenAPI document as a JSON-ready map.
func Build(info Info, schemas []models.Schema) map[string]any {
	definitions := map[string]any{
		"QueryLog": object(map[string]any{
			"sql":      map[string]any{"type": "string"},
			"params":   map[string]any{"type": "array", "items": map[string]any{}},
			"duration": map[string]any{"type": "number", "description": "milliseconds, two decimals"},
		}),
		"Error":   object(map[string]any{"error": map[string]any{"type": "string"}}),
		"Message": object(map[string]any{"message": map[string]any{"type": "string"}}),
	}

	paths := map[string]any{}
	for _, schema := range schemas {
		definitions[schema.Name] = recordDefinition(schema)
		definitions[schema.Name+"Input"] = inputDefinition(schema)

		collection := "/api/" + schema.Plural + "/"
		item := collection + "{" + schema.Key.Wire + "}"
		paths[collection] = map[string]any{
			"get":  operation(schema, "List "+schema.Plural, nil, responses(http.StatusOK, arrayOf(schema.Name))),
			"post": operation(schema, "Create a "+schema.Name, []any{bodyParam(schema)}, responses(http.StatusCreated, ref(schema.Name), writeFailures(schema, http.StatusBadRequest)...)),
		}
		paths[item] = map[string]any{
			"get":    operation(schema, "Get a "+schema.Name, []any{keyParam(schema)}, responses(http.StatusOK, ref(schema.Name), http.StatusNotFound)),
			"put":    operation(schema, "Update a "+schema.Name, []any{keyParam(schema), bodyParam(schema)}, responses(http.StatusOK, ref(schema.Name), writeFailures(schema, http.StatusBadRequest, http.StatusNotFound)...)),
			"delete": operation(schema, "Delete a "+schema.Name, []any{keyParam(schema)}, responses(http.StatusOK, ref("Message"), http.StatusNotFound)),
		}
	}

	return map[string]any{
		"swagger": "2.0",
		"info": map[string]any{
			"title":       info.Title,
			"description": info.Description,
			"version":     info.Version,
		},
		"basePath":    info.BasePath,
		"consumes":    []string{"application/json"},
		"produces":    []string{"application/json"},
		"paths":       paths,
		"definitions": definitions,
	}
}

func operation(schema models.Schema, summary string, params []any, resps map[string]any) map[string]any {
	op := map[string]any{
		"tags":      []string{schema.Plural},
		"summary":   summary,
		"responses": resps,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

// writeFailures adds 409 to the failures of a write when the resource has a
// uniqueness rule.
func writeFailures(schema models.Schema, failures ...int) []int {
	if schema.ConflictMessage != "" {
		failures = append(failures, http.StatusConflict)
	}
	return failures
}

// responses builds the response map: the success status with its data
// schema, followed by error statuses.
func responses(success int, data map[string]any, failures ...int) map[string]any {
	resps := map[string]any{
		strconv.Itoa(success): map[string]any{
			"description": http.StatusText(success),
			"schema":      envelope(data),
		},
	}
	failures = append(failures, http.StatusInternalServerError)
	for _, status := range failures {
		resps[strconv.Itoa(status)] = map[string]any{
			"description": http.StatusText(status),
			"schema":      envelope(ref("Error")),
		}
	}
	return resps
}

func envelope(data map[string]any) map[string]any {
	return object(map[string]any{
		"data":      data,
		"queryLogs": arrayOf("QueryLog"),
	})
}

func keyParam(schema models.Schema) map[string]any {
	return map[string]any{
		"name":     schema.Key.Wire,
		"in":       "path",
		"required": true,
		"type":     kindType(schema.Key.Kind),
	}
}

func bodyParam(schema models.Schema) map[string]any {
	return map[string]any{
		"name":     "body",
		"in":       "body",
		"required": true,
		"schema":   ref(schema.Name + "Input"),
	}
}

func recordDefinition(schema models.Schema) map[string]any {
	props := map[string]any{schema.Key.Wire: property(schema.Key)}
	for _, field := range schema.Fields {
		props[field.Wire] = property(field)
	}
	return object(props)
}

func inputDefinition(schema models.Schema) map[string]any {
	fields := schema.InsertFields()
	props := make(map[string]any, len(fields))
	for _, field := range fields {
		props[field.Wire] = property(field)
	}
	def := object(props)
	if required := schema.Required(); len(required) > 0 {
		def["required"] = required
	}
	return def
}

func property(field fieldmap.Field) map[string]any {
	prop := map[string]any{"type": kindType(field.Kind)}
	if field.Kind == fieldmap.Timestamp {
		prop["format"] = "date-time"
	}
	if field.ReadOnly {
		prop["readOnly"] = true
	}
	return prop
}

func kindType(kind fieldmap.Kind) string {
	if kind == fieldmap.Integer {
		return "integer"
	}
	return "string"
}

func object(props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props}
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/definitions/" + name}
}

func arrayOf(name string) map[string]any {
	return map[string]any{"type": "array", "items": ref(name)}
}
