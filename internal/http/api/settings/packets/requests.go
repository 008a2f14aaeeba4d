package packets

type SetSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// BulkSettingsRequest mirrors the known settings keys. Pointer fields so an
// omitted key leaves the stored value alone.
type BulkSettingsRequest struct {
	Theme               *string `json:"theme"`
	Language            *string `json:"language"`
	NotificationEnabled *bool   `json:"notification_enabled"`
}
