package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/app/reclaim"
	"github.com/dkeye/TempVoice/internal/config"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// Trigger exposes the resolved trigger room.
type Trigger interface {
	ID() domain.RoomID
	Category() domain.RoomID
}

// Admin deletes tracked rooms without ownership checks.
type Admin interface {
	ForceDelete(ctx context.Context, id domain.RoomID) error
}

type Sweeper interface {
	SweepOnce(ctx context.Context) reclaim.Report
}

type Deps struct {
	Registry *app.Registry
	Trigger  Trigger
	Admin    Admin
	Sweeper  Sweeper
	Hub      *app.Hub
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AuthMiddleware requires "Authorization: Bearer <secret>". Browsers cannot
// set headers on websocket upgrades, so a token query parameter is accepted
// too. An empty secret disables the check.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			token = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			log.Warn().Str("module", "adapters.http").Str("rid", c.GetString("request_id")).
				Str("path", c.FullPath()).Msg("unauthorized request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"rooms":   d.Registry.Len(),
			"trigger": d.Trigger.ID(),
		})
	})

	log.Info().Str("module", "adapters.http").Bool("auth", cfg.Secret != "").Msg("router setup")

	api := r.Group("/api", AuthMiddleware(cfg.Secret))

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": d.Registry.All()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		m, ok := d.Registry.Get(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotManaged.Error()})
			return
		}
		c.JSON(http.StatusOK, m)
	})

	api.DELETE("/rooms/:id", func(c *gin.Context) {
		id := domain.RoomID(c.Param("id"))
		err := d.Admin.ForceDelete(c.Request.Context(), id)
		switch {
		case err == nil:
			log.Info().Str("module", "adapters.http").Str("rid", c.GetString("request_id")).Str("room", string(id)).Msg("room force-deleted")
			c.Status(http.StatusNoContent)
		case errors.Is(err, domain.ErrNotManaged):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			// The entry is gone either way; the platform call failed.
			c.JSON(http.StatusBadGateway, gin.H{"error": domain.UserMessage(err)})
		}
	})

	api.POST("/sweep", func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Sweeper.SweepOnce(c.Request.Context()))
	})

	api.GET("/trigger", func(c *gin.Context) {
		id := d.Trigger.ID()
		c.JSON(http.StatusOK, gin.H{
			"id":       id,
			"category": d.Trigger.Category(),
			"resolved": id != "",
		})
	})

	stream := &eventStream{hub: d.Hub, pingPeriod: defaultPingPeriod}
	api.GET("/ws/events", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("rid", c.GetString("request_id")).Msg("ws events endpoint hit")
		stream.serve(ctx, c)
	})

	return r
}
