package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/http/api"
	"github.com/iqamah-app/iqamah/internal/http/api/mosques/packets"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/service"
)

type MosqueController struct {
	mosques   *service.MosqueService
	schedules *service.ScheduleService
}

func NewMosqueController(mosques *service.MosqueService, schedules *service.ScheduleService) *MosqueController {
	return &MosqueController{mosques: mosques, schedules: schedules}
}

// MosqueModule mounts the mosque search, favorites and schedule endpoints.
func MosqueModule(mosques *service.MosqueService, schedules *service.ScheduleService) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		ctl := NewMosqueController(mosques, schedules)
		r := c.Group

		r.GET("/mosques/search", api.ResolveEndpoint(ctl.search))
		r.GET("/mosques/nearby", api.ResolveEndpoint(ctl.nearby))
		r.GET("/mosques/favorites", api.ResolveEndpoint(ctl.listFavorites))
		r.POST("/mosques/favorites", api.ResolveEndpoint(ctl.addFavorite))
		r.DELETE("/mosques/favorites/:id", api.ResolveEndpoint(ctl.removeFavorite))
		r.GET("/mosques/:id", api.ResolveEndpoint(ctl.details))
		r.GET("/mosques/:id/times", api.ResolveEndpoint(ctl.prayerTimes))
		r.POST("/prayer-times/fetch", api.ResolveEndpoint(ctl.fetchByURL))
	})
}

// GET /api/mosques/search?q=...&country=...
func (m *MosqueController) search(ctx *gin.Context) (any, *api.Error) {
	query := ctx.Query("q")
	if query == "" {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "query parameter q is required"}
	}

	result, err := m.mosques.Search(ctx.Request.Context(), query, ctx.Query("country"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return result, nil
}

// GET /api/mosques/nearby?lat=...&lon=...&radius=...
func (m *MosqueController) nearby(ctx *gin.Context) (any, *api.Error) {
	lat, latErr := strconv.ParseFloat(ctx.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(ctx.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "lat and lon parameters are required"}
	}

	radius := 0.0
	if r := ctx.Query("radius"); r != "" {
		parsed, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid radius"}
		}
		radius = parsed
	}

	location := model.GeoLocation{Latitude: lat, Longitude: lon}
	mosques, err := m.mosques.Nearby(ctx.Request.Context(), location, radius)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mosques, nil
}

// GET /api/mosques/favorites
func (m *MosqueController) listFavorites(ctx *gin.Context) (any, *api.Error) {
	favorites, err := m.mosques.Favorites()
	if err != nil {
		return nil, api.FromError(err)
	}
	if favorites == nil {
		favorites = []model.Mosque{}
	}
	return favorites, nil
}

// POST /api/mosques/favorites
func (m *MosqueController) addFavorite(ctx *gin.Context) (any, *api.Error) {
	var request packets.AddFavoriteRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	mosque := model.Mosque{
		ID:        request.ID,
		Name:      request.Name,
		Address:   request.Address,
		City:      request.City,
		Country:   request.Country,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
	}
	if err := m.mosques.AddFavorite(mosque); err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/mosques/favorites/:id
func (m *MosqueController) removeFavorite(ctx *gin.Context) (any, *api.Error) {
	if err := m.mosques.RemoveFavorite(ctx.Param("id")); err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"status": "ok"}, nil
}

// GET /api/mosques/:id
func (m *MosqueController) details(ctx *gin.Context) (any, *api.Error) {
	mosque, err := m.mosques.Details(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err)
	}
	return mosque, nil
}

// GET /api/mosques/:id/times?date=YYYY-MM-DD&country=...&force=true
func (m *MosqueController) prayerTimes(ctx *gin.Context) (any, *api.Error) {
	force := ctx.Query("force") == "true"

	schedule, err := m.schedules.GetPrayerTimes(
		ctx.Request.Context(),
		ctx.Param("id"),
		ctx.Query("country"),
		ctx.Query("date"),
		force,
	)
	if err != nil {
		return nil, api.FromError(err)
	}
	return schedule, nil
}

// POST /api/prayer-times/fetch
func (m *MosqueController) fetchByURL(ctx *gin.Context) (any, *api.Error) {
	var request packets.FetchByURLRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	schedule, err := m.schedules.FetchByURL(ctx.Request.Context(), request.URL, request.Date)
	if err != nil {
		return nil, api.FromError(err)
	}
	return schedule, nil
}
