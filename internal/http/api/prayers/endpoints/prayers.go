package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/http/api"
	"github.com/iqamah-app/iqamah/internal/service"
)

type PrayerController struct {
	prayers *service.PrayerService
}

func NewPrayerController(prayers *service.PrayerService) *PrayerController {
	return &PrayerController{prayers: prayers}
}

// PrayerModule mounts the prayer-state query endpoints. Every query selects
// today's schedule by the server's local calendar date.
func PrayerModule(prayers *service.PrayerService) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		ctl := NewPrayerController(prayers)
		r := c.Group

		r.GET("/mosques/:id/prayers/next", api.ResolveEndpoint(ctl.nextPrayer))
		r.GET("/mosques/:id/prayers/current", api.ResolveEndpoint(ctl.currentPrayer))
		r.GET("/mosques/:id/prayers/countdowns", api.ResolveEndpoint(ctl.allCountdowns))
		r.GET("/mosques/:id/prayers/:name/countdown", api.ResolveEndpoint(ctl.countdown))
		r.GET("/mosques/:id/prayers/:name/rakah", api.ResolveEndpoint(ctl.estimateRakah))
		r.GET("/mosques/:id/prayers/:name/travel", api.ResolveEndpoint(ctl.travelPrediction))
		r.GET("/prayers/format-duration", api.ResolveEndpoint(ctl.formatDuration))
	})
}

// GET /api/mosques/:id/prayers/next
func (p *PrayerController) nextPrayer(ctx *gin.Context) (any, *api.Error) {
	result, err := p.prayers.NextPrayer(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return result, nil
}

// GET /api/mosques/:id/prayers/current
func (p *PrayerController) currentPrayer(ctx *gin.Context) (any, *api.Error) {
	current, err := p.prayers.CurrentPrayer(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err)
	}
	if current == nil {
		return gin.H{"current": nil}, nil
	}
	return gin.H{"current": current}, nil
}

// GET /api/mosques/:id/prayers/countdowns
func (p *PrayerController) allCountdowns(ctx *gin.Context) (any, *api.Error) {
	countdowns, err := p.prayers.AllCountdowns(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return countdowns, nil
}

// GET /api/mosques/:id/prayers/:name/countdown
func (p *PrayerController) countdown(ctx *gin.Context) (any, *api.Error) {
	seconds, err := p.prayers.Countdown(ctx.Request.Context(), ctx.Param("id"), ctx.Param("name"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"seconds_until_iqama": seconds}, nil
}

// GET /api/mosques/:id/prayers/:name/rakah
func (p *PrayerController) estimateRakah(ctx *gin.Context) (any, *api.Error) {
	estimate, err := p.prayers.EstimateRakah(ctx.Request.Context(), ctx.Param("id"), ctx.Param("name"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return estimate, nil
}

// GET /api/mosques/:id/prayers/:name/travel?travel_seconds=...
func (p *PrayerController) travelPrediction(ctx *gin.Context) (any, *api.Error) {
	travelSecs, err := strconv.ParseInt(ctx.Query("travel_seconds"), 10, 64)
	if err != nil || travelSecs < 0 {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "travel_seconds parameter is required"}
	}

	prediction, svcErr := p.prayers.TravelPrediction(ctx.Request.Context(), ctx.Param("id"), ctx.Param("name"), travelSecs)
	if svcErr != nil {
		return nil, api.FromError(svcErr)
	}
	return prediction, nil
}

// GET /api/prayers/format-duration?seconds=...
func (p *PrayerController) formatDuration(ctx *gin.Context) (any, *api.Error) {
	seconds, err := strconv.ParseInt(ctx.Query("seconds"), 10, 64)
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "seconds parameter is required"}
	}
	return gin.H{"formatted": p.prayers.FormatDuration(seconds)}, nil
}
