package pipeline

import "encoding/json"

// JSON schemas sent as provider response_format and used as a local backstop
// after field-level validation. Field-level checks run first because they
// produce itemized missing-field lists; the schema catches deeper
// malformation (wrong member types) the field checks tolerate.

var extractionSchema = json.RawMessage(`{
	"name": "chapter_extraction",
	"strict": true,
	"schema": {
		"type": "object",
		"additionalProperties": false,
		"required": ["characters", "places", "terms", "summary"],
		"properties": {
			"characters": {"type": "array", "items": {"type": "string"}},
			"places": {"type": "array", "items": {"type": "string"}},
			"terms": {"type": "array", "items": {"type": "string"}},
			"summary": {"type": "string", "minLength": 1}
		}
	}
}`)

// extractionCoreSchema is the inner schema document for local validation.
var extractionCoreSchema = json.RawMessage(`{
	"type": "object",
	"required": ["characters", "places", "terms", "summary"],
	"properties": {
		"characters": {"type": "array", "items": {"type": "string"}},
		"places": {"type": "array", "items": {"type": "string"}},
		"terms": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"}
	}
}`)

var translationSchema = json.RawMessage(`{
	"name": "chapter_translation",
	"strict": true,
	"schema": {
		"type": "object",
		"additionalProperties": false,
		"required": ["title", "content", "entity_mappings"],
		"properties": {
			"title": {"type": "string"},
			"content": {"type": "string"},
			"entity_mappings": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	}
}`)

// translationCoreSchema is the inner schema document for local validation.
var translationCoreSchema = json.RawMessage(`{
	"type": "object",
	"required": ["title", "content", "entity_mappings"],
	"properties": {
		"title": {"type": "string"},
		"content": {"type": "string"},
		"entity_mappings": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`)
