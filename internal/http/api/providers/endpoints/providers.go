package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/http/api"
	"github.com/iqamah-app/iqamah/internal/http/api/providers/packets"
	"github.com/iqamah-app/iqamah/internal/service"
)

type ProviderController struct {
	registry *service.Registry
	store    db.Store
}

func NewProviderController(registry *service.Registry, store db.Store) *ProviderController {
	return &ProviderController{registry: registry, store: store}
}

// ProviderModule mounts the provider discovery and configuration endpoints.
func ProviderModule(registry *service.Registry, store db.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		ctl := NewProviderController(registry, store)
		r := c.Group

		r.GET("/providers", api.ResolveEndpoint(ctl.list))
		r.GET("/providers/active", api.ResolveEndpoint(ctl.active))
		r.POST("/providers/:id/test", api.ResolveEndpoint(ctl.test))
		r.GET("/providers/:id/config", api.ResolveEndpoint(ctl.getConfig))
		r.PUT("/providers/:id/config", api.ResolveEndpoint(ctl.saveConfig))
	})
}

// GET /api/providers
func (p *ProviderController) list(ctx *gin.Context) (any, *api.Error) {
	return p.registry.AvailableProviders(), nil
}

// GET /api/providers/active
func (p *ProviderController) active(ctx *gin.Context) (any, *api.Error) {
	return p.registry.ActiveProvider(), nil
}

// POST /api/providers/:id/test
func (p *ProviderController) test(ctx *gin.Context) (any, *api.Error) {
	var request packets.TestProviderRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	result, err := p.registry.TestProvider(ctx.Request.Context(), ctx.Param("id"), request.Settings)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return result, nil
}

// GET /api/providers/:id/config
func (p *ProviderController) getConfig(ctx *gin.Context) (any, *api.Error) {
	cfg, err := p.store.GetProviderConfig(ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err)
	}
	if cfg == nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "provider not configured"}
	}
	return cfg, nil
}

// PUT /api/providers/:id/config
func (p *ProviderController) saveConfig(ctx *gin.Context) (any, *api.Error) {
	var request packets.SaveProviderConfigRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.registry.SaveProviderConfig(ctx.Param("id"), request.Settings); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return gin.H{"status": "ok"}, nil
}
