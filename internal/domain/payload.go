package domain

// RawMatchPayload is the prepared match document returned by the batch
// fetch collaborator. The upstream prepares match-v5 data down to one
// document per game, with skill order and rune pages already flattened.
type RawMatchPayload struct {
	Metadata RawMatchMetadata `json:"metadata"`
	Info     RawMatchInfo     `json:"info"`
}

type RawMatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // puuids
}

type RawMatchInfo struct {
	GameCreation int64            `json:"gameCreation"` // epoch millis
	GameDuration int              `json:"gameDuration"` // seconds
	GameVersion  string           `json:"gameVersion"`
	QueueID      int              `json:"queueId"`
	Participants []RawParticipant `json:"participants"`
}

type RawParticipant struct {
	Puuid         string `json:"puuid"`
	ParticipantID int    `json:"participantId"`
	TeamID        int    `json:"teamId"` // 100 or 200
	Win           bool   `json:"win"`

	ChampionID   int64  `json:"championId"`
	ChampionName string `json:"championName"`
	TeamPosition string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Lane         string `json:"lane"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	GoldEarned                  int `json:"goldEarned"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	PhysicalDamageDealt         int `json:"physicalDamageDealtToChampions"`
	MagicDamageDealt            int `json:"magicDamageDealtToChampions"`
	TrueDamageDealt             int `json:"trueDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken"`
	TotalHeal                   int `json:"totalHeal"`
	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`

	VisionScore int `json:"visionScore"`
	WardsPlaced int `json:"wardsPlaced"`
	WardsKilled int `json:"wardsKilled"`

	FirstBloodKill   bool `json:"firstBloodKill"`
	FirstBloodAssist bool `json:"firstBloodAssist"`
	FirstTowerKill   bool `json:"firstTowerKill"`
	FirstTowerAssist bool `json:"firstTowerAssist"`

	// Items holds the seven inventory slots; the preparer may send more on
	// anomalous data, which is truncated on ingest.
	Items          []int    `json:"items"`
	SummonerSpells []string `json:"summonerSpells"`
	SkillOrder     []string `json:"skillOrder"`

	Runes      RuneSetup     `json:"runes"`
	Challenges RawChallenges `json:"challenges"`
}

type RawChallenges struct {
	SoloKills               int     `json:"soloKills"`
	DamageDealtToObjectives int     `json:"damageDealtToObjectives"`
	DamageDealtToTurrets    int     `json:"damageDealtToTurrets"`
	TurretPlatesTaken       int     `json:"turretPlatesTaken"`
	KillsNearEnemyTurret    int     `json:"killsNearEnemyTurret"`
	KillParticipation       float64 `json:"killParticipation"`
}

// RuneSetup is the flattened rune page. Keystone and Runes carry Data
// Dragon perk ids.
type RuneSetup struct {
	PrimaryStyle int   `json:"primaryStyle"`
	SubStyle     int   `json:"subStyle"`
	Keystone     int   `json:"keystone"`
	Runes        []int `json:"runes"`
	StatShards   []int `json:"statShards"`
}

type DamageBreakdown struct {
	Physical     int `json:"physical"`
	Magic        int `json:"magic"`
	True         int `json:"true"`
	ToChampions  int `json:"toChampions"`
	ToObjectives int `json:"toObjectives"`
	ToTurrets    int `json:"toTurrets"`
}

type ObjectiveContribution struct {
	DamageToObjectives   int  `json:"damageToObjectives"`
	DamageToTurrets      int  `json:"damageToTurrets"`
	TurretPlates         int  `json:"turretPlates"`
	KillsNearEnemyTurret int  `json:"killsNearEnemyTurret"`
	FirstTower           bool `json:"firstTower"`
}

// ParticipantFor returns the participant entry for the given puuid.
func (m *RawMatchPayload) ParticipantFor(puuid string) (*RawParticipant, bool) {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].Puuid == puuid {
			return &m.Info.Participants[i], true
		}
	}
	return nil, false
}
