package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Action is the verb used in refusal messages
type Action string

const (
	ActionKick Action = "kick"
	ActionBan  Action = "ban"
	ActionMute Action = "mute"
	ActionWarn Action = "warn"
)

// Target describes the two members and the guild facts a moderation check needs
type Target struct {
	ActorID      string
	ActorRank    int
	TargetID     string
	TargetRank   int
	GuildOwnerID string
	BotID        string
}

// CheckTarget runs the ordered moderation checks: the actor must outrank the
// target, the target cannot be the guild owner, and the target cannot be the
// bot. It returns the refusal for the first failed check.
func CheckTarget(action Action, t Target) (bool, string) {
	if t.TargetRank >= t.ActorRank {
		return false, fmt.Sprintf("❌ You cannot %s someone with equal or higher role!", action)
	}
	if t.TargetID == t.GuildOwnerID {
		return false, fmt.Sprintf("❌ Cannot %s the server owner!", action)
	}
	if t.TargetID == t.BotID {
		return false, fmt.Sprintf("❌ I cannot %s myself!", action)
	}
	return true, ""
}

// TopRolePosition returns the highest position among the member's roles, 0 for @everyone only
func TopRolePosition(memberRoles []string, guildRoles []*discordgo.Role) int {
	positions := make(map[string]int, len(guildRoles))
	for _, r := range guildRoles {
		positions[r.ID] = r.Position
	}

	top := 0
	for _, id := range memberRoles {
		if p, ok := positions[id]; ok && p > top {
			top = p
		}
	}
	return top
}
