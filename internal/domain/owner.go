package domain

import "fmt"

type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerPlayer
	OwnerProPlayer
)

// PlaystyleOwner is the discriminated owner of a playstyle row: exactly one
// of player or pro player, fixed at construction. The zero value is invalid
// and rejected by every write path.
type PlaystyleOwner struct {
	kind OwnerKind
	id   int64
}

func PlayerOwner(playerID int64) PlaystyleOwner {
	return PlaystyleOwner{kind: OwnerPlayer, id: playerID}
}

func ProPlayerOwner(proPlayerID int64) PlaystyleOwner {
	return PlaystyleOwner{kind: OwnerProPlayer, id: proPlayerID}
}

func (o PlaystyleOwner) Kind() OwnerKind { return o.kind }

func (o PlaystyleOwner) IsZero() bool { return o.kind == OwnerNone }

// PlayerID returns the owning player id if the owner is a player.
func (o PlaystyleOwner) PlayerID() (int64, bool) {
	if o.kind == OwnerPlayer {
		return o.id, true
	}
	return 0, false
}

// ProPlayerID returns the owning pro player id if the owner is a pro.
func (o PlaystyleOwner) ProPlayerID() (int64, bool) {
	if o.kind == OwnerProPlayer {
		return o.id, true
	}
	return 0, false
}

func (o PlaystyleOwner) String() string {
	switch o.kind {
	case OwnerPlayer:
		return fmt.Sprintf("player:%d", o.id)
	case OwnerProPlayer:
		return fmt.Sprintf("pro_player:%d", o.id)
	default:
		return "none"
	}
}
