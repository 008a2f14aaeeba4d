package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/http/api"
	"github.com/iqamah-app/iqamah/internal/service"

	mosquesapi "github.com/iqamah-app/iqamah/internal/http/api/mosques/endpoints"
	prayersapi "github.com/iqamah-app/iqamah/internal/http/api/prayers/endpoints"
	providersapi "github.com/iqamah-app/iqamah/internal/http/api/providers/endpoints"
	settingsapi "github.com/iqamah-app/iqamah/internal/http/api/settings/endpoints"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	store db.Store,
	registry *service.Registry,
	mosques *service.MosqueService,
	schedules *service.ScheduleService,
	prayers *service.PrayerService,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		mosquesapi.MosqueModule(mosques, schedules),
		prayersapi.PrayerModule(prayers),
		settingsapi.SettingsModule(store),
		providersapi.ProviderModule(registry, store),
	)
}
