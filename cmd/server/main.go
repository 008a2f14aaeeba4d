package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/cache"
	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/engine"
	"github.com/iqamah-app/iqamah/internal/notify"
	"github.com/iqamah-app/iqamah/internal/service"
)

func main() {
	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(db.DB)
	directory := newDirectory(env)

	registry := service.NewRegistry(store, directory)
	schedules := service.NewScheduleService(store, registry)
	mosques := service.NewMosqueService(store, registry)
	prayers := service.NewPrayerService(schedules, engine.WithDefaults())

	// reminders are optional; the API works without a broker
	if env.MQTTBrokerURL != "" {
		publisher, err := notify.NewMQTTPublisher(env.MQTTBrokerURL, env.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, reminders disabled")
		} else {
			defer publisher.Close()

			scheduler := notify.NewScheduler(store, publisher)
			if err := scheduler.Start(); err != nil {
				log.Warn().Err(err).Msg("failed to start reminder loop")
			} else {
				defer scheduler.Stop()
			}
		}
	}

	// set up gin router
	r := gin.Default()
	RegisterRoutes(r, store, registry, mosques, schedules, prayers)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// newDirectory picks the mosque-directory cache backend: Redis when
// configured and reachable, otherwise in-process memory.
func newDirectory(env Environment) cache.Directory {
	if env.RedisAddress == "" {
		return cache.NewMemory(env.DirectoryTTL)
	}

	rd := cache.NewRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword, env.DirectoryTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rd.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("address", env.RedisAddress).
			Msg("redis unreachable, using in-memory directory cache")
		return cache.NewMemory(env.DirectoryTTL)
	}

	log.Info().Str("address", env.RedisAddress).Msg("using redis directory cache")
	return rd
}
