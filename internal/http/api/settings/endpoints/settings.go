package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/http/api"
	"github.com/iqamah-app/iqamah/internal/http/api/settings/packets"
)

type SettingsController struct {
	store db.Store
}

func NewSettingsController(store db.Store) *SettingsController {
	return &SettingsController{store: store}
}

// SettingsModule mounts the generic key/value settings endpoints.
func SettingsModule(store db.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		ctl := NewSettingsController(store)
		r := c.Group

		r.GET("/settings", api.ResolveEndpoint(ctl.getAll))
		r.PUT("/settings", api.ResolveEndpoint(ctl.setAll))
		r.GET("/settings/:key", api.ResolveEndpoint(ctl.get))
		r.PUT("/settings/:key", api.ResolveEndpoint(ctl.set))
	})
}

// GET /api/settings/:key
func (s *SettingsController) get(ctx *gin.Context) (any, *api.Error) {
	value, err := s.store.GetSetting(ctx.Param("key"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"key": ctx.Param("key"), "value": value}, nil
}

// PUT /api/settings/:key
func (s *SettingsController) set(ctx *gin.Context) (any, *api.Error) {
	var request packets.SetSettingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := s.store.SetSetting(ctx.Param("key"), request.Value); err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"status": "ok"}, nil
}

// GET /api/settings
func (s *SettingsController) getAll(ctx *gin.Context) (any, *api.Error) {
	out := gin.H{}

	for _, key := range []string{"theme", "language"} {
		if value, err := s.store.GetSetting(key); err == nil && value != "" {
			out[key] = value
		}
	}
	if value, err := s.store.GetSetting("notification_enabled"); err == nil && value != "" {
		out["notification_enabled"] = value == "true"
	}

	return out, nil
}

// PUT /api/settings
func (s *SettingsController) setAll(ctx *gin.Context) (any, *api.Error) {
	var request packets.BulkSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Theme != nil {
		if err := s.store.SetSetting("theme", *request.Theme); err != nil {
			return nil, api.FromError(err)
		}
	}
	if request.Language != nil {
		if err := s.store.SetSetting("language", *request.Language); err != nil {
			return nil, api.FromError(err)
		}
	}
	if request.NotificationEnabled != nil {
		if err := s.store.SetSetting("notification_enabled", strconv.FormatBool(*request.NotificationEnabled)); err != nil {
			return nil, api.FromError(err)
		}
	}

	return gin.H{"status": "ok"}, nil
}
