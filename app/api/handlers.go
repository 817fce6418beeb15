package api

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/globalopps/sam-atlas/app/cache"
	"github.com/globalopps/sam-atlas/app/database"
	"github.com/globalopps/sam-atlas/app/geo"
	"github.com/globalopps/sam-atlas/app/ingest"
	"github.com/globalopps/sam-atlas/app/tasks"
)

const defaultRecentLimit = 25

func NewHandler(repo database.OpportunityRepository, taxonomy *geo.Taxonomy,
	pipeline *ingest.Pipeline, progress *tasks.Progress, responseCache *cache.Cache,
	recentDays, chunkSize int) *Handler {
	return &Handler{
		repo:       repo,
		taxonomy:   taxonomy,
		pipeline:   pipeline,
		progress:   progress,
		cache:      responseCache,
		recentDays: recentDays,
		chunkSize:  chunkSize,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	count, err := h.repo.GetCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_count", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["opportunities"] = count
	health["countries"] = len(h.taxonomy.Codes())
	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := h.cache.Get(c.Request.Context(), cache.StatsKey(), &cached); err != nil {
		slog.Warn("Cache read failed", "key", cache.StatsKey(), "error", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	total, err := h.repo.GetCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byRegion, err := h.repo.CountByRegion()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_region", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	bySubRegion, err := h.repo.CountBySubRegion()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_sub_region", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	recent, err := h.repo.CountRecentByRegion(h.recentDays)
	if err != nil {
		slog.Error("Database error", "operation", "count_recent", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := gin.H{
		"total":         total,
		"by_region":     byRegion,
		"by_sub_region": bySubRegion,
		"recent": gin.H{
			"days":      h.recentDays,
			"by_region": recent,
		},
	}

	if err := h.cache.Set(c.Request.Context(), cache.StatsKey(), response); err != nil {
		slog.Warn("Cache write failed", "key", cache.StatsKey(), "error", err)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) ListRegions(c *gin.Context) {
	counts, err := h.repo.CountByRegion()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_region", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	regions := make([]map[string]interface{}, 0)
	for _, region := range h.taxonomy.Regions() {
		regions = append(regions, map[string]interface{}{
			"name":          region,
			"sub_regions":   h.taxonomy.SubRegions(region),
			"countries":     len(h.taxonomy.CountriesByRegion(region)),
			"opportunities": counts[region],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"regions": regions,
		"total":   len(regions),
	})
}

func (h *Handler) GetRegion(c *gin.Context) {
	region := c.Param("region")
	if !slices.Contains(h.taxonomy.Regions(), region) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown region"})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	cacheKey := cache.RegionKey(region, limit)
	var cached map[string]interface{}
	if hit, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err != nil {
		slog.Warn("Cache read failed", "key", cacheKey, "error", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	byCountry, err := h.repo.CountByCountry(region)
	if err != nil {
		slog.Error("Database error", "operation", "count_by_country", "region", region, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	bySubRegion, err := h.repo.CountBySubRegion()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_sub_region", "region", region, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	recent, err := h.repo.GetRecent(region, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent", "region", region, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows := make([]map[string]interface{}, 0, len(recent))
	for _, opp := range recent {
		rows = append(rows, map[string]interface{}{
			"notice_id":         opp.NoticeID,
			"title":             opp.Title,
			"department":        opp.Department,
			"sub_tier":          opp.SubTier,
			"office":            opp.Office,
			"posted_date":       opp.NormalizedDate,
			"type":              opp.Type,
			"set_aside":         opp.SetAside,
			"response_deadline": opp.ResponseDeadline,
			"naics_code":        opp.NaicsCode,
			"pop_city":          opp.PopCity,
			"pop_country":       opp.PopCountry,
			"iso3":              opp.ISO3,
			"sub_region":        opp.SubRegion,
			"active":            opp.Active,
			"award_amount":      opp.AwardAmount,
			"link":              opp.Link,
		})
	}

	response := gin.H{
		"region":        region,
		"sub_regions":   h.taxonomy.SubRegions(region),
		"by_country":    byCountry,
		"by_sub_region": bySubRegion[region],
		"recent":        rows,
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, response); err != nil {
		slog.Warn("Cache write failed", "key", cacheKey, "error", err)
	}

	c.JSON(http.StatusOK, response)
}

// APIIngestFile runs a local CSV file through the ingestion pipeline
// synchronously. Intended for operator use against offline extracts; large
// files go through the bootstrap command instead.
func (h *Handler) APIIngestFile(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing path parameter"})
		return
	}

	task := tasks.NewIngestFileTask(req.Path, h.pipeline, h.chunkSize)
	task.Start()
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Ingest failed", "path", req.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingest failed",
			"details": err.Error(),
		})
		return
	}

	inserted, skipped := task.Counts()
	if inserted > 0 {
		if err := h.cache.Invalidate(c.Request.Context()); err != nil {
			slog.Warn("Cache invalidation failed", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"path":     req.Path,
		"inserted": inserted,
		"skipped":  skipped,
		"duration": task.GetDuration().Round(time.Millisecond).String(),
	})
}

func (h *Handler) APIGetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources": h.progress.Entries(),
	})
}
