package api

import (
	"github.com/globalopps/sam-atlas/app/cache"
	"github.com/globalopps/sam-atlas/app/database"
	"github.com/globalopps/sam-atlas/app/geo"
	"github.com/globalopps/sam-atlas/app/ingest"
	"github.com/globalopps/sam-atlas/app/tasks"
)

type Handler struct {
	repo       database.OpportunityRepository
	taxonomy   *geo.Taxonomy
	pipeline   *ingest.Pipeline
	progress   *tasks.Progress
	cache      *cache.Cache
	recentDays int
	chunkSize  int
}

type ingestRequest struct {
	Path string `json:"path" binding:"required"`
}
