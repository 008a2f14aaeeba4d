package packets

import "encoding/json"

// TestProviderRequest carries candidate settings for a connectivity test
// without persisting them.
type TestProviderRequest struct {
	Settings json.RawMessage `json:"settings"`
}

type SaveProviderConfigRequest struct {
	Settings json.RawMessage `json:"settings" binding:"required"`
}
