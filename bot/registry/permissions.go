package registry

import (
	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Invoker is what the dispatcher knows about who triggered a command
type Invoker struct {
	UserPermissions int64
	BotPermissions  int64
	Owner           bool
	InGuild         bool
}

// InvokerFrom reads the computed permissions the platform attaches to every interaction
func InvokerFrom(i *discordgo.Interaction, isOwner func(userID string) bool) Invoker {
	inv := Invoker{
		BotPermissions: i.AppPermissions,
		InGuild:        i.GuildID != "",
	}

	userID := ""
	if i.Member != nil {
		inv.UserPermissions = i.Member.Permissions
		if i.Member.User != nil {
			userID = i.Member.User.ID
		}
	} else if i.User != nil {
		userID = i.User.ID
	}
	if isOwner != nil && userID != "" {
		inv.Owner = isOwner(userID)
	}
	return inv
}

// HasPermission reports whether have covers every bit of want; administrators hold everything
func HasPermission(have, want int64) bool {
	if want == 0 {
		return true
	}
	if have&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return have&want == want
}

// CheckPermissions evaluates a command's requirements. On refusal it returns the
// message the dispatcher sends instead of running the handler.
func CheckPermissions(invoker Invoker, cmd *Command) (bool, string) {
	p := cmd.Permissions

	if p.GuildOnly && !invoker.InGuild {
		return false, common.MsgGuildOnly
	}
	if p.OwnerOnly && !invoker.Owner {
		return false, common.MsgOwnerOnly
	}
	// Permission bitsets only exist inside a guild. A member requirement makes
	// the command unusable in DMs; the bot's own requirement is moot there.
	if !invoker.InGuild {
		if p.User != 0 {
			return false, common.MsgGuildOnly
		}
		return true, ""
	}
	if !HasPermission(invoker.UserPermissions, p.User) {
		return false, common.MsgMissingPerms
	}
	if !HasPermission(invoker.BotPermissions, p.Bot) {
		return false, common.MsgBotMissingPerms
	}
	return true, ""
}
