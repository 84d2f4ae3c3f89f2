package domain

import (
	"encoding/json"
	"time"
)

type Player struct {
	ID                   int64
	GameName             string
	TagLine              string
	Puuid                string
	SummonerID           *string
	Region               string
	Role                 *string
	FavoriteChampionID   *int64
	FavoriteChampionName *string
	ProfileIconID        *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RiotID returns the "gameName#tagLine" identity string.
func (p *Player) RiotID() string {
	return p.GameName + "#" + p.TagLine
}

// RiotUser tracks every Riot ID that ever looked itself up, independent of
// whether a full Player record was built for it.
type RiotUser struct {
	RiotID             string
	Region             string
	MainRole           string
	FavoriteChampionID *int64
	LastSeenAt         *time.Time
}

type Match struct {
	ID             int64
	MatchID        string
	PlayerID       int64
	RawData        json.RawMessage
	MatchTimestamp int64 // epoch millis
	IsProcessed    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlayerMatchMetrics is the derived per-match record for one player.
// Pointer fields are undefined (null) rather than zero when the source
// data cannot support them; every ratio/share field is in [0,1].
type PlayerMatchMetrics struct {
	ID       int64
	MatchID  int64
	PlayerID int64

	ChampionID   int64
	ChampionName string
	Role         *string
	Lane         *string

	CSPerMin          *float64
	GoldPerMin        *float64
	DamagePerMin      *float64
	DamageShare       *float64
	KillParticipation *float64

	Kills    int
	Deaths   int
	Assists  int
	KDARatio *float64

	Win           bool
	TeamID        *int
	ParticipantID *int
	GameDuration  *int // seconds

	VisionScore          *int
	VisionScorePerMin    *float64
	GoldEarned           *int
	TotalDamageDealt     *int
	TotalDamageTaken     *int
	TotalHeal            *int
	TotalMinionsKilled   *int
	NeutralMinionsKilled *int
	WardsPlaced          *int
	WardsKilled          *int

	FirstBlood       bool
	FirstBloodAssist bool
	FirstTower       bool
	FirstTowerAssist bool

	Items                 []int
	SummonerSpells        []string
	RuneSetup             *RuneSetup
	SkillOrder            []string
	DamageBreakdown       *DamageBreakdown
	ObjectiveContribution *ObjectiveContribution

	MatchRecordedAt int64
}

type PlayerChapter struct {
	ID           int64
	PlayerID     int64
	ChapterIndex int
	Season       int

	StartDate time.Time
	EndDate   time.Time

	StartGameIdx int
	EndGameIdx   int

	Title   string
	Summary string

	TopChampionID      int64
	TopChampionName    string
	TopChampionIconURL *string
	TopChampionGames   int

	GamesCount  int
	WinRate     float64 // 0-1
	KDAScore    float64 // 0-100
	CSScore     float64 // 0-100
	DamageScore float64 // 0-100
	VisionScore float64 // 0-100

	// MatchIDs are the Match row ids inside this chapter, oldest first.
	MatchIDs []int64
}

type ProPlayer struct {
	ID            int64
	Name          string
	Team          *string
	Region        string
	Role          string
	ProfileIconID *int64
	Puuid         *string
	GameName      *string
	TagLine       *string
}

// PlaystyleVector is the six-dimension fingerprint, each value in [0,100].
type PlaystyleVector struct {
	Aggressiveness   float64
	TeamFocus        float64
	ObjectiveControl float64
	VisionControl    float64
	FarmEfficiency   float64
	LateGameScaling  float64
}

// Values returns the dimensions in their canonical order.
func (v PlaystyleVector) Values() [6]float64 {
	return [6]float64{
		v.Aggressiveness, v.TeamFocus, v.ObjectiveControl,
		v.VisionControl, v.FarmEfficiency, v.LateGameScaling,
	}
}

type PlayerPlaystyle struct {
	ID    int64
	Owner PlaystyleOwner

	Vector PlaystyleVector

	// LowConfidence marks vectors built from fewer matches than the
	// configured minimum sample size.
	LowConfidence bool

	Summary string

	// Signals are the raw normalized signal values the vector was blended
	// from, kept for explanation payloads.
	Signals map[string]float64
}

type SimilarityMatch struct {
	ID                 string // nanoid
	PlayerID           int64
	ProPlayerID        int64
	Score              float64 // 0-1
	FeatureExplanation string
}

type ChampionRecommendation struct {
	ID              int64
	PlayerID        int64
	ChampionID      int64
	ChampionName    string
	ChampionIconURL *string
	Reason          string
	Rank            int // 1-3, unique per player
}

type Champion struct {
	ID          int64
	ChampionID  int64
	ChampionKey string
	Name        string
	Title       string
	ImageURL    string
}

type ProPlayerChampionVideo struct {
	ID           string // nanoid
	PlayerID     int64
	ProPlayerID  int64
	ChampionID   int64
	ChampionName string
	VideoURL     string
	VideoTitle   *string
	MatchID      *string
	KeyPoints    string
	FocusAreas   string
}
