package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	RiftAPIBaseURL   string
	RiftAPIKey       string
	NarrativeBaseURL string
	DDragonLocale    string

	DBPath     string
	ServerPort string
	LogLevel   string

	FetchMaxMatches int

	Analysis AnalysisConfig
}

// AnalysisConfig holds every tunable of the derivation pipeline. Defaults
// ship in code; ANALYSIS_CONFIG may point at a JSON file overriding them.
type AnalysisConfig struct {
	Chapters   ChapterConfig    `json:"chapters"`
	Playstyle  PlaystyleConfig  `json:"playstyle"`
	Similarity SimilarityConfig `json:"similarity"`
	Recommend  RecommendConfig  `json:"recommend"`
}

type ChapterConfig struct {
	// Mode is "count" (fixed matches per chapter) or "date_range".
	Mode      string `json:"mode"`
	Size      int    `json:"size"`
	RangeDays int    `json:"range_days"`

	// Reference ranges mapped onto the 0-100 chapter scores.
	KDA          ScaleRange `json:"kda"`
	CSPerMin     ScaleRange `json:"cs_per_min"`
	DamageShare  ScaleRange `json:"damage_share"`
	VisionPerMin ScaleRange `json:"vision_per_min"`
}

type PlaystyleConfig struct {
	MinSampleSize int `json:"min_sample_size"`

	// Weights blends named raw signals into each of the six dimensions.
	Weights map[string][]SignalWeight `json:"weights"`

	// Baselines normalizes each raw signal into [0,1] before weighting.
	Baselines map[string]ScaleRange `json:"baselines"`
}

type SimilarityConfig struct {
	TopN int `json:"top_n"`
}

type RecommendConfig struct {
	// MasteryGames is the game count at which a champion counts as already
	// mastered and stops being a recommendation candidate.
	MasteryGames int `json:"mastery_games"`
}

type SignalWeight struct {
	Signal string  `json:"signal"`
	Weight float64 `json:"weight"`
}

// ScaleRange is a monotonic min-max reference range; values outside it
// clamp at the ends.
type ScaleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiftAPIBaseURL:   getEnv("RIFT_API_BASE_URL", ""),
		RiftAPIKey:       getEnv("RIFT_API_KEY", ""),
		NarrativeBaseURL: getEnv("NARRATIVE_BASE_URL", ""),
		DDragonLocale:    getEnv("DDRAGON_LOCALE", "en_US"),
		DBPath:           getEnv("DB_PATH", "journey.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		FetchMaxMatches:  getEnvInt("FETCH_MAX_MATCHES", 20),
		Analysis:         DefaultAnalysisConfig(),
	}

	if cfg.RiftAPIBaseURL == "" {
		return nil, fmt.Errorf("RIFT_API_BASE_URL is required")
	}

	if path := os.Getenv("ANALYSIS_CONFIG"); path != "" {
		if err := loadAnalysisFile(path, &cfg.Analysis); err != nil {
			return nil, fmt.Errorf("failed to load analysis config %s: %w", path, err)
		}
		logger.Info().Str("path", path).Msg("analysis config overrides loaded")
	}

	if err := cfg.Analysis.validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("fetch_max_matches", cfg.FetchMaxMatches).
		Str("chapter_mode", cfg.Analysis.Chapters.Mode).
		Int("chapter_size", cfg.Analysis.Chapters.Size).
		Msg("configuration loaded")

	return cfg, nil
}

func loadAnalysisFile(path string, dst *AnalysisConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (a AnalysisConfig) validate() error {
	switch a.Chapters.Mode {
	case "count":
		if a.Chapters.Size < 1 {
			return fmt.Errorf("chapter size must be >= 1, got %d", a.Chapters.Size)
		}
	case "date_range":
		if a.Chapters.RangeDays < 1 {
			return fmt.Errorf("chapter range_days must be >= 1, got %d", a.Chapters.RangeDays)
		}
	default:
		return fmt.Errorf("unknown chapter mode %q", a.Chapters.Mode)
	}
	for dim, weights := range a.Playstyle.Weights {
		for _, w := range weights {
			if _, ok := a.Playstyle.Baselines[w.Signal]; !ok {
				return fmt.Errorf("dimension %s references signal %q with no baseline", dim, w.Signal)
			}
		}
	}
	if a.Similarity.TopN < 1 {
		return fmt.Errorf("similarity top_n must be >= 1, got %d", a.Similarity.TopN)
	}
	if a.Recommend.MasteryGames < 1 {
		return fmt.Errorf("recommend mastery_games must be >= 1, got %d", a.Recommend.MasteryGames)
	}
	return nil
}

// DefaultAnalysisConfig returns the shipped baselines. The reference
// ranges are fixed role-agnostic population values, chosen so that
// recomputation stays a pure function of stored inputs plus config.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Chapters: ChapterConfig{
			Mode:         "count",
			Size:         10,
			RangeDays:    30,
			KDA:          ScaleRange{Min: 0, Max: 6},
			CSPerMin:     ScaleRange{Min: 0, Max: 10},
			DamageShare:  ScaleRange{Min: 0, Max: 0.4},
			VisionPerMin: ScaleRange{Min: 0, Max: 2.5},
		},
		Playstyle: PlaystyleConfig{
			MinSampleSize: 10,
			Weights: map[string][]SignalWeight{
				"aggressiveness": {
					{Signal: "kills_near_turret_rate", Weight: 0.4},
					{Signal: "kills_per_min", Weight: 0.35},
					{Signal: "damage_per_min", Weight: 0.25},
				},
				"team_focus": {
					{Signal: "kill_participation", Weight: 0.5},
					{Signal: "assist_rate", Weight: 0.5},
				},
				"objective_control": {
					{Signal: "objective_damage_per_min", Weight: 0.6},
					{Signal: "first_tower_rate", Weight: 0.4},
				},
				"vision_control": {
					{Signal: "vision_per_min", Weight: 0.6},
					{Signal: "wards_per_min", Weight: 0.4},
				},
				"farm_efficiency": {
					{Signal: "cs_per_min", Weight: 0.6},
					{Signal: "gold_per_min", Weight: 0.4},
				},
				"late_game_scaling": {
					{Signal: "long_game_win_rate", Weight: 0.6},
					{Signal: "damage_share", Weight: 0.4},
				},
			},
			Baselines: map[string]ScaleRange{
				"kills_near_turret_rate":   {Min: 0, Max: 3},
				"kills_per_min":            {Min: 0, Max: 0.4},
				"damage_per_min":           {Min: 0, Max: 1200},
				"kill_participation":       {Min: 0, Max: 1},
				"assist_rate":              {Min: 0, Max: 0.8},
				"objective_damage_per_min": {Min: 0, Max: 300},
				"first_tower_rate":         {Min: 0, Max: 0.5},
				"vision_per_min":           {Min: 0, Max: 2.5},
				"wards_per_min":            {Min: 0, Max: 1},
				"cs_per_min":               {Min: 0, Max: 10},
				"gold_per_min":             {Min: 0, Max: 500},
				"long_game_win_rate":       {Min: 0, Max: 1},
				"damage_share":             {Min: 0, Max: 0.4},
			},
		},
		Similarity: SimilarityConfig{TopN: 3},
		Recommend:  RecommendConfig{MasteryGames: 5},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
