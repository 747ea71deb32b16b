package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cityweather/dates"
	"cityweather/extract"
)

// StrategyFactory builds a fresh strategy for one request. history is nil unless the
// request asked for a date range.
type StrategyFactory func(history *dates.Range) (extract.Strategy, error)

type Handler struct {
	newStrategy StrategyFactory
	logger      zerolog.Logger
}

func NewHandler(newStrategy StrategyFactory, logger zerolog.Logger) *Handler {
	return &Handler{newStrategy: newStrategy, logger: logger}
}

// FetchData runs one extraction and responds with the per-city result.
func (h *Handler) FetchData(c *gin.Context) {
	history, err := parseHistory(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strategy, err := h.newStrategy(history)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build strategy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	extractor := extract.New(strategy)
	defer func() {
		if err := extractor.Close(); err != nil {
			h.logger.Error().Err(err).Msg("failed to close strategy")
		}
	}()

	result, err := extractor.RetrieveData(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info().Int("cities", result.Len()).Msg("extraction finished")
	c.JSON(http.StatusOK, result)
}

func parseHistory(from, to string) (*dates.Range, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.New("from and to query parameters must be set together")
	}

	period, err := dates.ParseRange(from, to)
	if err != nil {
		return nil, err
	}

	return &period, nil
}

// NewRouter registers the extraction handler on / along with health and metrics endpoints.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", h.FetchData)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}
