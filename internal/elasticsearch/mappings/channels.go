package mappings

// ChannelMapping represents the Elasticsearch mapping for the channel index
type ChannelMapping struct {
	Settings ChannelSettings `json:"settings"`
	Mappings ChannelMappings `json:"mappings"`
}

// ChannelSettings defines index-level settings
type ChannelSettings struct {
	BaseSettings
}

// ChannelMappings defines the field mappings for channel documents
type ChannelMappings struct {
	Properties ChannelProperties `json:"properties"`
}

// ChannelProperties defines the properties for each field in the channel mapping
type ChannelProperties struct {
	// Core identifiers
	ID Field `json:"id"`

	// Scored metadata
	Title       Field `json:"title"`
	Description Field `json:"description"`
	Language    Field `json:"language"`

	// Metrics
	Subscribers Field `json:"subscribers"`
	VideoCount  Field `json:"video_count"`

	// Moderation state
	Blocklisted Field `json:"blocklisted"`
	Vetting     Field `json:"vetting"`

	// Audit result
	BrandSafety Field `json:"brand_safety"`
}

// NewChannelMapping creates a new channel index mapping with default settings
func NewChannelMapping() *ChannelMapping {
	return &ChannelMapping{
		Settings: ChannelSettings{
			BaseSettings: DefaultSettings(),
		},
		Mappings: ChannelMappings{
			Properties: ChannelProperties{
				ID: Field{
					Type: "keyword",
				},
				Title: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Description: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Language: Field{
					Type: "keyword",
				},
				Subscribers: Field{
					Type: "long",
				},
				VideoCount: Field{
					Type: "integer",
				},
				Blocklisted: Field{
					Type: "boolean",
				},
				Vetting: vettingField(),
				BrandSafety: brandSafetyField(map[string]Field{
					"videos_scored": {Type: "integer"},
				}),
			},
		},
	}
}

// GetJSON returns the mapping as a JSON string
func (m *ChannelMapping) GetJSON() (string, error) {
	return ToJSON(m)
}

// Validate validates the mapping configuration
func (m *ChannelMapping) Validate() error {
	return ValidateSettings(m.Settings.BaseSettings)
}
