package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/surfcams/internal/cams"
	"github.com/i474232898/surfcams/internal/forecast"
	"github.com/i474232898/surfcams/internal/store"
)

var validate = validator.New()

// Forecaster assembles a forecast bundle for a spot.
type Forecaster interface {
	Aggregate(ctx context.Context, spotID string) (forecast.Bundle, error)
}

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Cams     cams.Repository
	Forecast Forecaster
	Dev      bool
	Logger   *slog.Logger

	// Streams fetches proxied cam playlists; Referer is sent with each
	// proxied request.
	Streams *http.Client
	Referer string
}

// maxPlaylistBytes bounds a proxied response body.
const maxPlaylistBytes = 8 << 20

// ErrorHandler renders every handler error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Streams == nil {
		deps.Streams = http.DefaultClient
	}
	h := handlers{Deps: deps}

	app.Get("/health", h.health)

	v1 := app.Group("/api/v1")
	v1.Get("/cams", h.listCams)
	v1.Get("/cams/:key", h.getCam)
	v1.Get("/cams/:key/forecast", h.camForecast)
	v1.Get("/forecast", h.spotForecast)

	app.Get("/p/*", h.proxy)
}

type handlers struct {
	Deps
}

// health is ready once the catalog holds at least one category.
func (h handlers) health(c *fiber.Ctx) error {
	categories, err := h.Cams.ListCategories(c.UserContext())
	if err != nil {
		h.Logger.Error("health check: listing categories", "error", err)
	}
	if err != nil || len(categories) == 0 {
		msg := "Please retry later"
		if h.Dev {
			msg = "Not enough categories"
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": msg})
	}
	return c.JSON(fiber.Map{"message": "ok"})
}

func (h handlers) listCams(c *fiber.Ctx) error {
	categories, err := h.Cams.ListCategories(c.UserContext())
	if err != nil {
		h.Logger.Error("listing categories", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list cams")
	}
	for i := range categories {
		withLinks(c, categories[i].Cams)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h handlers) getCam(c *fiber.Ctx) error {
	cam, err := h.lookupCam(c)
	if err != nil {
		return err
	}

	categories, err := h.Cams.ListCategories(c.UserContext())
	if err != nil {
		h.Logger.Error("listing categories", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch cam")
	}

	related := cams.RelatedCams(categories, cam)
	if related == nil {
		related = []cams.Cam{}
	}
	withLinks(c, related)
	return c.JSON(fiber.Map{
		"cam":     cam.WithLinks(detailURL(c, cam.ID)),
		"related": related,
	})
}

func (h handlers) camForecast(c *fiber.Ctx) error {
	cam, err := h.lookupCam(c)
	if err != nil {
		return err
	}
	return h.respondForecast(c, cam.SpotID)
}

// spotQuery holds query parameters for the raw forecast endpoint.
type spotQuery struct {
	SpotID string `validate:"required,max=100,alphanum"`
}

func (h handlers) spotForecast(c *fiber.Ctx) error {
	q := spotQuery{SpotID: c.Query("spotId")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.respondForecast(c, q.SpotID)
}

// forecastResponse is the bundle plus the wind/wave rows zipped for
// table rendering.
type forecastResponse struct {
	forecast.Bundle
	Conditions []forecast.Condition `json:"conditions"`
}

func (h handlers) respondForecast(c *fiber.Ctx, spotID string) error {
	bundle, err := h.Forecast.Aggregate(c.UserContext(), spotID)
	if err != nil {
		var fe *forecast.FetchError
		if errors.As(err, &fe) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "forecast unavailable")
		}
		h.Logger.Error("aggregating forecast", "spot", spotID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast")
	}

	return c.JSON(forecastResponse{
		Bundle:     bundle,
		Conditions: bundle.Conditions(),
	})
}

func detailURL(c *fiber.Ctx, id int64) string {
	return c.BaseURL() + "/api/v1/cams/" + strconv.FormatInt(id, 10)
}

func withLinks(c *fiber.Ctx, list []cams.Cam) {
	for i := range list {
		list[i] = list[i].WithLinks(detailURL(c, list[i].ID))
	}
}

// lookupCam resolves :key as a slug, falling back to a numeric id.
func (h handlers) lookupCam(c *fiber.Ctx) (cams.Cam, error) {
	key := c.Params("key")
	ctx := c.UserContext()

	cam, err := h.Cams.GetCamBySlug(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
			cam, err = h.Cams.GetCam(ctx, id)
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return cams.Cam{}, fiber.NewError(fiber.StatusNotFound, "cam not found")
		}
		h.Logger.Error("looking up cam", "key", key, "error", err)
		return cams.Cam{}, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch cam")
	}
	return cam, nil
}

// proxy relays an HLS playlist from https://<path> with the configured
// Referer. Only hosts of proxied cams in the catalog are reachable.
func (h handlers) proxy(c *fiber.Ctx) error {
	path := c.Params("*")
	if path == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing stream url")
	}
	target, err := url.Parse("https://" + path)
	if err != nil || target.Host == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid stream url")
	}
	target.RawQuery = string(c.Request().URI().QueryString())

	allowed, err := h.proxiedHosts(c.UserContext())
	if err != nil {
		h.Logger.Error("listing proxied cams", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to proxy stream")
	}
	if !allowed[target.Host] {
		return fiber.NewError(fiber.StatusForbidden, "stream host not allowed")
	}

	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodGet, target.String(), nil)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid stream url")
	}
	if h.Referer != "" {
		req.Header.Set("Referer", h.Referer)
	}

	resp, err := h.Streams.Do(req)
	if err != nil {
		h.Logger.Warn("proxying stream", "host", target.Host, "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "stream unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "stream unavailable")
	}

	c.Set(fiber.HeaderContentType, "application/x-mpegURL")
	return c.Status(resp.StatusCode).Send(body)
}

func (h handlers) proxiedHosts(ctx context.Context) (map[string]bool, error) {
	list, err := h.Cams.ListCams(ctx)
	if err != nil {
		return nil, err
	}
	hosts := make(map[string]bool)
	for _, cam := range list {
		if !cam.Proxy {
			continue
		}
		if u, err := url.Parse(cam.URL); err == nil && u.Host != "" {
			hosts[u.Host] = true
		}
	}
	return hosts, nil
}
