package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prasenjit/oas-minify/internal/events"
	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/models"
	"github.com/prasenjit/oas-minify/internal/parser"
	"github.com/prasenjit/oas-minify/internal/render"
	"github.com/prasenjit/oas-minify/internal/stats"
	"github.com/prasenjit/oas-minify/internal/storage"
)

// defaultRunLimit caps run listings that do not ask for a limit.
const defaultRunLimit = 100

// Defaults are the minification settings used when a request leaves them out.
type Defaults struct {
	Options minify.Options
	Format  render.Format
}

// Handler handles API requests.
type Handler struct {
	store          storage.Storage
	statsCollector *stats.Collector
	feed           *events.Feed
	parser         *parser.Parser
	validator      *parser.Validator
	defaults       Defaults
	logger         *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Storage, statsCollector *stats.Collector, feed *events.Feed, defaults Defaults, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if defaults.Format == "" {
		defaults.Format = render.FormatYAML
	}
	return &Handler{
		store:          store,
		statsCollector: statsCollector,
		feed:           feed,
		parser:         parser.NewParser(),
		validator:      parser.NewValidator(),
		defaults:       defaults,
		logger:         logger,
	}
}

// ListSpecs returns all specs.
func (h *Handler) ListSpecs(c *gin.Context) {
	specs, err := h.store.GetAllSpecs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Don't include full content in list.
	result := make([]gin.H, len(specs))
	for i, spec := range specs {
		result[i] = gin.H{
			"id":             spec.ID,
			"name":           spec.Name,
			"version":        spec.Version,
			"description":    spec.Description,
			"openapi":        spec.OpenAPI,
			"operationCount": spec.OperationCount,
			"createdAt":      spec.CreatedAt,
			"updatedAt":      spec.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, result)
}

// CreateSpec stores a new OpenAPI document.
func (h *Handler) CreateSpec(c *gin.Context) {
	var input models.SpecInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parseResult, err := h.parser.ParseSpec(input.Content, input.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OpenAPI spec: " + err.Error()})
		return
	}
	if input.Description != "" {
		parseResult.Spec.Description = input.Description
	}

	if err := h.store.CreateSpec(parseResult.Spec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("spec created",
		"spec", parseResult.Spec.ID,
		"name", parseResult.Spec.Name,
		"operations", parseResult.Spec.OperationCount)

	c.JSON(http.StatusCreated, gin.H{
		"id":             parseResult.Spec.ID,
		"name":           parseResult.Spec.Name,
		"version":        parseResult.Spec.Version,
		"openapi":        parseResult.Spec.OpenAPI,
		"operationCount": parseResult.Spec.OperationCount,
	})
}

// GetSpec returns a single spec.
func (h *Handler) GetSpec(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, spec)
}

// UpdateSpec renames a spec or replaces its document.
func (h *Handler) UpdateSpec(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	var update models.SpecUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := *spec
	if update.Content != nil {
		doc, err := h.parser.Parse([]byte(*update.Content))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OpenAPI spec: " + err.Error()})
			return
		}
		info := h.parser.Info(doc)
		updated.Content = *update.Content
		updated.Version = info.Version
		updated.OpenAPI = info.OpenAPI
		updated.OperationCount = info.OperationCount
	}
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}

	updated.UpdatedAt = time.Now()

	if err := h.store.UpdateSpec(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteSpec deletes a spec and its runs.
func (h *Handler) DeleteSpec(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.DeleteSpec(id); err != nil {
		h.writeStoreError(c, err, "Spec not found")
		return
	}
	if err := h.store.DeleteRunsBySpec(id); err != nil {
		h.logger.Warn("failed to delete runs of spec", "spec", id, "error", err)
	}
	h.feed.ClearSpec(id)

	h.logger.Info("spec deleted", "spec", id)
	c.JSON(http.StatusOK, gin.H{"message": "Spec deleted"})
}

// ListOperations returns the operation analysis of a stored spec.
func (h *Handler) ListOperations(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	doc, err := h.parser.Parse([]byte(spec.Content))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, minify.Analyze(doc))
}

// MinifySpec minifies a stored spec.
func (h *Handler) MinifySpec(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	var req models.MinifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.runMinify(c, spec.ID, spec.Name, spec.Content, &req)
}

// MinifyInline minifies a document posted in the request body.
func (h *Handler) MinifyInline(c *gin.Context) {
	var req models.MinifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	h.runMinify(c, "", "", req.Content, &req)
}

// runMinify parses content, minifies it and records the run. A run that
// finished without success is still returned, with status 422.
func (h *Handler) runMinify(c *gin.Context, specID, specName, content string, req *models.MinifyRequest) {
	format := h.defaults.Format
	if req.Format != "" {
		f, err := render.ParseFormat(req.Format)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		format = f
	}

	doc, err := h.parser.Parse([]byte(content))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OpenAPI spec: " + err.Error()})
		return
	}

	opts := req.ApplyTo(h.defaults.Options)
	minifier := minify.New(opts,
		minify.WithValidator(h.validator),
		minify.WithLogger(h.logger.With("spec", specID)))

	start := time.Now()
	result := minifier.Minify(c.Request.Context(), doc, req.Operations)

	run := &models.Run{
		ID:                  uuid.New().String(),
		SpecID:              specID,
		SpecName:            specName,
		Requests:            req.Operations,
		Options:             opts,
		Format:              string(format),
		Success:             result.Success,
		OriginalSize:        result.OriginalSize,
		MinifiedSize:        result.MinifiedSize,
		ReductionPercentage: result.ReductionPercentage,
		OperationsIncluded:  result.OperationsIncluded,
		SchemasIncluded:     result.SchemasIncluded,
		Diagnostics:         result.Diagnostics,
		CreatedAt:           start,
	}
	if run.Requests == nil {
		run.Requests = []string{}
	}

	if result.Success {
		out, err := render.Marshal(result.Document, format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		run.Output = string(out)
	}
	run.Duration = time.Since(start).Nanoseconds()

	if err := h.store.CreateRun(run); err != nil {
		h.logger.Error("failed to store run", "run", run.ID, "error", err)
	}
	h.statsCollector.RecordRun(run)
	h.feed.Publish(run)

	status := http.StatusOK
	if !run.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, run)
}

// ListRuns returns stored runs, newest first.
func (h *Handler) ListRuns(c *gin.Context) {
	filter, err := parseRunFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs, err := h.store.GetRuns(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, withoutOutput(runs))
}

// GetRun returns a single run including its rendered output.
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err, "Run not found")
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListSpecRuns returns the runs of one spec.
func (h *Handler) ListSpecRuns(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	runs, err := h.store.GetRunsBySpec(spec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, withoutOutput(runs))
}

// ListEvents returns the recent runs kept by the live feed.
func (h *Handler) ListEvents(c *gin.Context) {
	filter, err := parseRunFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed": h.feed.Stats(),
		"runs": h.feed.Recent(filter),
	})
}

// ClearEvents clears the live feed history.
func (h *Handler) ClearEvents(c *gin.Context) {
	specID := c.Query("specId")
	if specID != "" {
		h.feed.ClearSpec(specID)
	} else {
		h.feed.Clear()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Events cleared"})
}

// GetGlobalStats returns global statistics.
func (h *Handler) GetGlobalStats(c *gin.Context) {
	specs, _ := h.store.GetAllSpecs()

	names := make(map[string]string, len(specs))
	for _, spec := range specs {
		names[spec.ID] = spec.Name
	}

	c.JSON(http.StatusOK, h.statsCollector.GetGlobalStats(len(specs), names))
}

// GetSpecStats returns statistics for a spec.
func (h *Handler) GetSpecStats(c *gin.Context) {
	spec, ok := h.lookupSpec(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.statsCollector.GetSpecStats(spec.ID, spec.Name))
}

// ResetStats resets all statistics.
func (h *Handler) ResetStats(c *gin.Context) {
	h.statsCollector.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Statistics reset"})
}

// HealthCheck returns health status.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// lookupSpec loads the spec named by the id path parameter, writing the
// error response when it cannot.
func (h *Handler) lookupSpec(c *gin.Context) (*models.Spec, bool) {
	spec, err := h.store.GetSpec(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err, "Spec not found")
		return nil, false
	}
	return spec, true
}

func (h *Handler) writeStoreError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	h.logger.Error("storage failure", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseRunFilter(c *gin.Context) (models.RunFilter, error) {
	filter := models.RunFilter{
		SpecID: c.Query("specId"),
		Limit:  defaultRunLimit,
	}

	if v := c.Query("success"); v != "" {
		success, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("success must be true or false")
		}
		filter.Success = &success
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

// withoutOutput copies runs without their rendered documents.
func withoutOutput(runs []*models.Run) []models.Run {
	out := make([]models.Run, len(runs))
	for i, run := range runs {
		out[i] = *run
		out[i].Output = ""
	}
	return out
}
