package moderation

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestCheckTarget(t *testing.T) {
	base := Target{
		ActorID:      "mod",
		ActorRank:    5,
		TargetID:     "member",
		TargetRank:   1,
		GuildOwnerID: "owner",
		BotID:        "bot",
	}

	tests := []struct {
		name    string
		mutate  func(*Target)
		ok      bool
		message string
	}{
		{"lower ranked member", func(*Target) {}, true, ""},
		{"equal rank", func(t *Target) { t.TargetRank = 5 }, false, "❌ You cannot kick someone with equal or higher role!"},
		{"higher rank", func(t *Target) { t.TargetRank = 9 }, false, "❌ You cannot kick someone with equal or higher role!"},
		{"owner", func(t *Target) { t.TargetID = "owner" }, false, "❌ Cannot kick the server owner!"},
		{"bot", func(t *Target) { t.TargetID = "bot" }, false, "❌ I cannot kick myself!"},
		{"rank is checked before owner", func(t *Target) { t.TargetID = "owner"; t.TargetRank = 9 }, false, "❌ You cannot kick someone with equal or higher role!"},
		{"owner is checked before bot", func(t *Target) { t.TargetID = "x"; t.GuildOwnerID = "x"; t.BotID = "x" }, false, "❌ Cannot kick the server owner!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := base
			tt.mutate(&target)

			ok, message := CheckTarget(ActionKick, target)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestCheckTarget_MessagesNameTheAction(t *testing.T) {
	target := Target{ActorRank: 1, TargetRank: 1}
	for _, action := range []Action{ActionKick, ActionBan, ActionMute, ActionWarn} {
		_, message := CheckTarget(action, target)
		assert.Contains(t, message, string(action))
	}
}

func TestTopRolePosition(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "everyone", Position: 0},
		{ID: "member", Position: 2},
		{ID: "mod", Position: 7},
	}

	assert.Equal(t, 7, TopRolePosition([]string{"member", "mod"}, roles))
	assert.Equal(t, 2, TopRolePosition([]string{"member", "deleted-role"}, roles))
	assert.Equal(t, 0, TopRolePosition(nil, roles))
}
