package model

import "encoding/json"

// ConfigFieldType enumerates the input widgets a settings UI may render for
// a provider configuration field.
type ConfigFieldType string

const (
	FieldString   ConfigFieldType = "string"
	FieldPassword ConfigFieldType = "password"
	FieldNumber   ConfigFieldType = "number"
	FieldBoolean  ConfigFieldType = "boolean"
	FieldURL      ConfigFieldType = "url"
	FieldSelect   ConfigFieldType = "select"
)

// ConfigField describes one provider setting. Purely descriptive; the engine
// and resolver never read these.
type ConfigField struct {
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	FieldType    ConfigFieldType `json:"field_type"`
	Required     bool            `json:"required"`
	Description  string          `json:"description,omitempty"`
	DefaultValue string          `json:"default_value,omitempty"`
	Options      []string        `json:"options,omitempty"`
}

func NewConfigField(key, label string, fieldType ConfigFieldType) ConfigField {
	return ConfigField{Key: key, Label: label, FieldType: fieldType}
}

func (f ConfigField) AsRequired() ConfigField {
	f.Required = true
	return f
}

func (f ConfigField) WithDescription(desc string) ConfigField {
	f.Description = desc
	return f
}

func (f ConfigField) WithDefault(value string) ConfigField {
	f.DefaultValue = value
	return f
}

func (f ConfigField) WithOptions(opts ...string) ConfigField {
	f.Options = opts
	return f
}

// ProviderInfo is the descriptor a UI uses to list and configure providers.
type ProviderInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	ConfigSchema []ConfigField `json:"config_schema"`
}

// ProviderConfig is a stored provider configuration: the provider id plus an
// opaque settings blob. One row per provider id, latest write wins.
type ProviderConfig struct {
	ProviderID string          `json:"provider_id"`
	Settings   json.RawMessage `json:"settings"`
}

// ProviderTestResult is the outcome of a connectivity test.
type ProviderTestResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LatencyMs *int64 `json:"latency_ms,omitempty"`
}
