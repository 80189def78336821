package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmatteri/wxplot/internal/cache"
	"github.com/cmatteri/wxplot/internal/plot"
	"github.com/cmatteri/wxplot/internal/store"
	"github.com/cmatteri/wxplot/internal/units"
)

var validate = validator.New()

// Handler serves series requests.
type Handler struct {
	engine   *plot.Engine
	cache    *cache.Series
	bindings map[string]string
	log      *zap.Logger
}

// NewHandler creates a Handler. cache may be nil to disable caching.
func NewHandler(engine *plot.Engine, c *cache.Series, bindings map[string]string, log *zap.Logger) *Handler {
	return &Handler{engine: engine, cache: c, bindings: bindings, log: log}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	v1 := app.Group("/api/v1")

	v1.Get("/series/:binding/:observation", h.getSeries)
}

// rawResponse carries un-aggregated records. Raw rows are not
// interval-aligned, so explicit start/stop axes accompany the values.
type rawResponse struct {
	Starts []int64    `json:"starts"`
	Stops  []int64    `json:"stops"`
	Values []*float64 `json:"values"`
	Unit   string     `json:"unit"`
}

func (h *Handler) getSeries(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Set("X-Request-ID", requestID)

	binding := c.Params("binding")
	table, ok := h.bindings[binding]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown data binding")
	}

	observation := c.Params("observation")
	if !units.KnownObservation(observation) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown observation type")
	}

	var req seriesQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	opts := plot.Options{
		Table:         table,
		Observation:   observation,
		Timespan:      plot.TimeSpan{Start: req.Start, Stop: req.Stop},
		Aggregate:     plot.AggregateType(req.AggregateType),
		IntervalSecs:  req.AggregateInterval,
		UnixIntervals: req.UnixIntervals,
	}

	started := time.Now()

	// Raw mode returns the un-aggregated triples directly.
	if opts.Aggregate == plot.AggNone {
		res, err := h.engine.Series(c.Context(), opts)
		if err != nil {
			return h.seriesError(requestID, binding, observation, err)
		}
		return c.JSON(rawResponse{
			Starts: res.StartTimes.Values,
			Stops:  res.StopTimes.Values,
			Values: res.Data.Values,
			Unit:   res.Data.UnitType,
		})
	}

	key := cache.Key(binding, opts)
	if h.cache != nil {
		if series, ok := h.cache.Get(key); ok {
			return c.JSON(series)
		}
	}

	series, err := h.engine.DenseSeries(c.Context(), opts)
	if err != nil {
		return h.seriesError(requestID, binding, observation, err)
	}
	if h.cache != nil {
		h.cache.Put(key, series)
	}

	h.log.Debug("series computed",
		zap.String("request_id", requestID),
		zap.String("binding", binding),
		zap.String("observation", observation),
		zap.Int("points", len(series.Values)),
		zap.Duration("elapsed", time.Since(started)))

	return c.JSON(series)
}

// seriesError maps engine failures onto HTTP statuses. A unit-system change
// mid-series is archive misconfiguration, so it surfaces as a server error,
// not client misuse.
func (h *Handler) seriesError(requestID, binding, observation string, err error) error {
	var unitErr *plot.UnitMismatchError

	switch {
	case errors.Is(err, plot.ErrIntervalRequired), errors.Is(err, plot.ErrBadAggregate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &unitErr):
		h.log.Error("unit system changed mid-series",
			zap.String("request_id", requestID),
			zap.String("binding", binding),
			zap.String("observation", observation),
			zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "archive store unavailable")
	case errors.Is(err, store.ErrStore):
		h.log.Error("archive query failed",
			zap.String("request_id", requestID),
			zap.String("binding", binding),
			zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "archive query failed")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute series")
	}
}

// seriesQuery holds query parameters for the series endpoint.
type seriesQuery struct {
	Start             int64
	Stop              int64
	AggregateType     string `validate:"omitempty,oneof=sum avg min max count last"`
	AggregateInterval int64  `validate:"omitempty,gt=0"`
	UnixIntervals     bool
}

func (q *seriesQuery) bind(c *fiber.Ctx) error {
	startStr := c.Query("start")
	stopStr := c.Query("stop")
	if startStr == "" || stopStr == "" {
		return errors.New("start and stop query parameters are required")
	}

	start, err := parseTime(startStr)
	if err != nil {
		return err
	}
	stop, err := parseTime(stopStr)
	if err != nil {
		return err
	}
	if stop < start {
		return errors.New("stop must not precede start")
	}
	q.Start = start
	q.Stop = stop

	q.AggregateType = c.Query("aggregateType")

	if s := c.Query("aggregateInterval"); s != "" {
		interval, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("invalid aggregateInterval; want seconds")
		}
		q.AggregateInterval = interval
	}

	q.UnixIntervals = c.QueryBool("unixTimeIntervals", true)
	return nil
}

// parseTime accepts either RFC3339 or unix epoch seconds.
func parseTime(s string) (int64, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Unix(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return unix, nil
	}
	return 0, errors.New("invalid time format; use RFC3339 or unix seconds")
}
