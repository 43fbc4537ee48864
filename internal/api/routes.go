package api

import (
	"os"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardforge/deck-builder/backend/internal/api/handlers"
	"github.com/cardforge/deck-builder/backend/internal/metrics"
	"github.com/cardforge/deck-builder/backend/internal/services"
)

// countRequests records every request against the HTTP facade. FullPath keeps
// the label cardinality at the route template, not the raw URL.
func countRequests(c *gin.Context) {
	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	metrics.HTTPRequestsTotal.WithLabelValues(
		c.Request.Method,
		path,
		strconv.Itoa(c.Writer.Status()),
	).Inc()
}

func SetupRouter(
	scryfall *services.ScryfallService,
	resolver *services.Resolver,
	batch *services.BatchResolver,
	partners *services.PartnerFinder,
	gameChangers *services.GameChangerSet,
	multiCopy *services.MultiCopySet,
) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(countRequests)

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(scryfall, resolver, batch, partners, gameChangers, multiCopy)
	deckHandler := handlers.NewDeckHandler()
	eventHandler := handlers.NewEventHandler()

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		cards := api.Group("/cards")
		{
			cards.GET("/resolve", cardHandler.ResolveCard)
			cards.POST("/resolve-many", cardHandler.ResolveManyCards)
			cards.GET("/partners", cardHandler.FindPartners)
			cards.GET("/game-changers", cardHandler.GetGameChangers)
			cards.GET("/multi-copy", cardHandler.GetMultiCopyAllowance)
			cards.GET("/autocomplete", cardHandler.AutocompleteCards)
		}

		// Deck routes
		decks := api.Group("/decks")
		{
			decks.GET("", deckHandler.ListDecks)
			decks.POST("", deckHandler.CreateDeck)
			decks.GET("/:id", deckHandler.GetDeck)
			decks.PUT("/:id", deckHandler.UpdateDeck)
			decks.DELETE("/:id", deckHandler.DeleteDeck)
		}

		// Event routes
		events := api.Group("/events")
		{
			events.POST("", eventHandler.RecordEvent)
			events.GET("/summary", eventHandler.GetEventSummary)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
