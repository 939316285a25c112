// Package mappings defines the Elasticsearch index mappings for the video and
// channel indices, including the persisted brand_safety section.
package mappings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// IndexMapping represents a generic Elasticsearch index mapping
type IndexMapping interface {
	// GetJSON returns the mapping as a JSON string
	GetJSON() (string, error)
	// Validate validates the mapping configuration
	Validate() error
}

// BaseSettings defines common index-level settings
type BaseSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// DefaultSettings returns the default index settings
func DefaultSettings() BaseSettings {
	return BaseSettings{
		NumberOfShards:   1,
		NumberOfReplicas: 1,
	}
}

// ValidateSettings validates the index settings
func ValidateSettings(settings BaseSettings) error {
	if settings.NumberOfShards < 1 {
		return errors.New("number_of_shards must be greater than 0")
	}
	if settings.NumberOfReplicas < 0 {
		return errors.New("number_of_replicas must be greater than or equal to 0")
	}
	return nil
}

// Field represents an Elasticsearch field mapping
type Field struct {
	Type     string `json:"type,omitempty"`
	Analyzer string `json:"analyzer,omitempty"`
	Format   string `json:"format,omitempty"`
	Index    *bool  `json:"index,omitempty"`

	// Properties nests sub-fields for object-typed fields.
	Properties map[string]Field `json:"properties,omitempty"`
}

// ToJSON converts any mapping to a JSON string with proper indentation
func ToJSON(mapping any) (string, error) {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal mapping to JSON: %w", err)
	}
	return string(data), nil
}

// brandSafetyField builds the shared brand_safety object mapping. Video and
// channel results differ only in the extra counters carried alongside the
// overall score.
func brandSafetyField(extra map[string]Field) Field {
	properties := map[string]Field{
		"overall_score": {Type: "integer"},
		"language":      {Type: "keyword"},
		"categories": {
			Type: "object",
			Properties: map[string]Field{
				"category_id": {Type: "long"},
				"score":       {Type: "integer"},
			},
		},
		"updated_at": {
			Type:   "date",
			Format: "strict_date_optional_time||epoch_millis",
		},
	}
	for name, field := range extra {
		properties[name] = field
	}
	return Field{Type: "object", Properties: properties}
}

// vettingField builds the manual review object mapping shared by both indices.
func vettingField() Field {
	return Field{
		Type: "object",
		Properties: map[string]Field{
			"vetted_at": {
				Type:   "date",
				Format: "strict_date_optional_time||epoch_millis",
			},
			"unsafe_categories": {Type: "long"},
		},
	}
}
