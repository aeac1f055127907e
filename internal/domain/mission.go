package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MissionKind string

const (
	MissionKindTwitterFollow   MissionKind = "twitter_follow"
	MissionKindTwitterRetweet  MissionKind = "twitter_retweet"
	MissionKindTelegramChannel MissionKind = "telegram_channel"
	MissionKindTelegramGroup   MissionKind = "telegram_group"
)

type Mission struct {
	ID     string
	Title  string
	Reward decimal.Decimal
	Link   string
	Kind   MissionKind
}

// Missions is the fixed promotional catalog.
var Missions = []Mission{
	{ID: "follow_twitter", Title: "Follow PiNode Labs on X", Reward: decimal.NewFromInt(200), Link: "https://x.com/pinodelabs", Kind: MissionKindTwitterFollow},
	{ID: "join_telegram_channel", Title: "Join the Telegram channel", Reward: decimal.NewFromInt(200), Link: "https://t.me/pinodelabscn", Kind: MissionKindTelegramChannel},
	{ID: "join_telegram_group", Title: "Join the Telegram group", Reward: decimal.NewFromInt(200), Link: "https://t.me/pinodelabs", Kind: MissionKindTelegramGroup},
	{ID: "retweet_twitter_1", Title: "Retweet the launch post", Reward: decimal.NewFromInt(150), Link: "https://x.com/pinodelabs/status/2016374488703893759", Kind: MissionKindTwitterRetweet},
	{ID: "retweet_twitter_2", Title: "Retweet the mining post", Reward: decimal.NewFromInt(150), Link: "https://x.com/pinodelabs/status/2016375862661361799", Kind: MissionKindTwitterRetweet},
}

func FindMission(id string) (Mission, bool) {
	for _, m := range Missions {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}

type MissionStatus string

const (
	MissionStatusCompleted MissionStatus = "completed"
	MissionStatusClaimed   MissionStatus = "claimed"
)

func (s MissionStatus) rank() int {
	switch s {
	case MissionStatusCompleted:
		return 1
	case MissionStatusClaimed:
		return 2
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the record monotonic.
func (s MissionStatus) CanAdvanceTo(next MissionStatus) bool {
	return next.rank() > 0 && next.rank() >= s.rank()
}

type MissionRecord struct {
	UserID    uuid.UUID
	MissionID string
	Status    MissionStatus
	Reward    decimal.Decimal
	ClaimedAt *time.Time
}

// MissionView joins a catalog entry with the user's record, if any.
type MissionView struct {
	Mission
	Status    MissionStatus
	ClaimedAt *time.Time
}

// MissionClaim is the outcome of a mission claim. AlreadyClaimed is set
// when the reward had been credited by an earlier call.
type MissionClaim struct {
	MissionID      string
	Reward         decimal.Decimal
	AlreadyClaimed bool
	ClaimedAt      time.Time
	Transaction    *Transaction
}

// MissionIdempotencyKey identifies the single claim transaction a user can
// hold for a mission.
func MissionIdempotencyKey(userID uuid.UUID, missionID string) string {
	return "mission:" + userID.String() + ":" + missionID
}
