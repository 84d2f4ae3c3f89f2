package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	NarrativeTimeout   = 20 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	PipelineTimeout    = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MaxItemSlots is the inventory capacity including the trinket slot.
	MaxItemSlots      = 7
	MaxSummonerSpells = 2
	MaxSkillOrder     = 18
)

const (
	MaxRecommendationRank = 3
	PipelineParallelism   = 4
)
