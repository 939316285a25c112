package mappings

// VideoMapping represents the Elasticsearch mapping for the video index
type VideoMapping struct {
	Settings VideoSettings `json:"settings"`
	Mappings VideoMappings `json:"mappings"`
}

// VideoSettings defines index-level settings
type VideoSettings struct {
	BaseSettings
}

// VideoMappings defines the field mappings for video documents
type VideoMappings struct {
	Properties VideoProperties `json:"properties"`
}

// VideoProperties defines the properties for each field in the video mapping
type VideoProperties struct {
	// Core identifiers
	ID           Field `json:"id"`
	ChannelID    Field `json:"channel_id"`
	ChannelTitle Field `json:"channel_title"`

	// Scored content
	Title       Field `json:"title"`
	Description Field `json:"description"`
	Tags        Field `json:"tags"`
	Transcripts Field `json:"transcripts"`
	Language    Field `json:"language"`

	// Metrics
	Views Field `json:"views"`

	// Moderation state
	Blocklisted Field `json:"blocklisted"`
	Vetting     Field `json:"vetting"`

	// Audit result
	BrandSafety Field `json:"brand_safety"`
}

// NewVideoMapping creates a new video index mapping with default settings
func NewVideoMapping() *VideoMapping {
	return &VideoMapping{
		Settings: VideoSettings{
			BaseSettings: DefaultSettings(),
		},
		Mappings: VideoMappings{
			Properties: VideoProperties{
				ID: Field{
					Type: "keyword",
				},
				ChannelID: Field{
					Type: "keyword",
				},
				ChannelTitle: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Title: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Description: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Tags: Field{
					Type: "keyword",
				},
				Transcripts: Field{
					Type: "object",
					Properties: map[string]Field{
						"language": {Type: "keyword"},
						"text":     {Type: "text", Analyzer: "standard"},
					},
				},
				Language: Field{
					Type: "keyword",
				},
				Views: Field{
					Type: "long",
				},
				Blocklisted: Field{
					Type: "boolean",
				},
				Vetting: vettingField(),
				BrandSafety: brandSafetyField(map[string]Field{
					"rescore": {Type: "boolean"},
				}),
			},
		},
	}
}

// GetJSON returns the mapping as a JSON string
func (m *VideoMapping) GetJSON() (string, error) {
	return ToJSON(m)
}

// Validate validates the mapping configuration
func (m *VideoMapping) Validate() error {
	return ValidateSettings(m.Settings.BaseSettings)
}
