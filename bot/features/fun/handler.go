package fun

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var compliments = []string{
	"you're more helpful than you realize!",
	"you have the best laugh!",
	"you're a great listener!",
	"you light up the room!",
	"you're awesome and you know it!",
	"you're even better than a unicorn, because you're real!",
	"you're a gift to those around you!",
	"your smile could light up the darkest room!",
	"you're incredibly talented and creative!",
	"you make the world a better place just by being in it!",
	"you're stronger than you know!",
	"your kindness is contagious!",
	"you're one of a kind and that's amazing!",
	"you inspire others without even trying!",
	"you're brilliant and capable!",
}

// fetchFailed answers a deferred fetch command that ran out of attempts
func fetchFailed(inv *common.Invocation, kind string, err error, message string) error {
	log.WithFields(log.Fields{
		"kind":  kind,
		"error": err,
	}).Warn("Content fetch failed")
	return inv.EditContent(message)
}

func (f *Feature) handleMeme(ctx context.Context, inv *common.Invocation) error {
	if err := inv.Defer(false); err != nil {
		return err
	}

	meme, err := f.content.Meme(ctx)
	if err != nil {
		return fetchFailed(inv, "meme", err, "❌ Couldn't fetch a meme right now. Try again!")
	}

	embed := common.NewEmbed(meme.Title, "", f.intN(0xFFFFFF+1))
	embed.URL = meme.Permalink
	embed.Image = &discordgo.MessageEmbedImage{URL: meme.ImageURL}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("👍 %d | r/%s", meme.Ups, meme.Subreddit)}
	return inv.EditEmbed(embed)
}

func (f *Feature) handleDadJoke(ctx context.Context, inv *common.Invocation) error {
	if err := inv.Defer(false); err != nil {
		return err
	}

	joke, err := f.content.DadJoke(ctx)
	if err != nil {
		return fetchFailed(inv, "joke", err, "❌ Couldn't fetch a joke right now!")
	}
	return inv.EditEmbed(common.NewEmbed("😄 Dad Joke", joke, common.ColorInfo))
}

func (f *Feature) handleFact(ctx context.Context, inv *common.Invocation) error {
	if err := inv.Defer(false); err != nil {
		return err
	}

	fact, err := f.content.Fact(ctx)
	if err != nil {
		return fetchFailed(inv, "fact", err, "❌ Couldn't fetch a fact right now!")
	}
	return inv.EditEmbed(common.NewEmbed("🧠 Random Fact", fact, common.ColorSuccess))
}

func (f *Feature) handleQuote(ctx context.Context, inv *common.Invocation) error {
	if err := inv.Defer(false); err != nil {
		return err
	}

	quote, err := f.content.Quote(ctx)
	if err != nil {
		return fetchFailed(inv, "quote", err, "❌ Couldn't fetch a quote right now!")
	}
	return inv.EditEmbed(common.NewEmbed("✍️...", fmt.Sprintf("\n\n\"%s\"\n\n— %s", quote.Text, quote.Author), common.ColorInfo))
}

// target returns the user named by option, or the invoker when it is absent
func target(inv *common.Invocation, option string) (*discordgo.User, *discordgo.Member) {
	if inv.Options.Has(option) {
		return inv.ResolvedUser(option), inv.ResolvedMember(option)
	}
	member := inv.Interaction.Member
	if member != nil && member.User == nil {
		member = nil
	}
	return inv.User(), member
}

func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.User != nil {
		return member.DisplayName()
	}
	return user.DisplayName()
}

// memberColor is the color of the member's highest colored role, like the client shows it
func memberColor(s common.Session, guildID string, member *discordgo.Member) int {
	if member == nil || guildID == "" {
		return common.ColorPrimary
	}
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Debug("Could not load roles for member color")
		return common.ColorPrimary
	}

	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	color, top := common.ColorPrimary, -1
	for _, r := range roles {
		if held[r.ID] && r.Color != 0 && r.Position > top {
			color, top = r.Color, r.Position
		}
	}
	return color
}

func (f *Feature) handleRoast(ctx context.Context, inv *common.Invocation) error {
	user, _ := target(inv, "member")
	text, _ := f.content.Roast(ctx)
	return inv.RespondEmbed(common.NewEmbed("🔥 Roasted!", user.Mention()+", "+text, common.ColorOrange), nil, false)
}

func (f *Feature) handleCompliment(_ context.Context, inv *common.Invocation) error {
	user, _ := target(inv, "member")
	text := compliments[f.intN(len(compliments))]
	return inv.RespondEmbed(common.NewEmbed("💝 Compliment", user.Mention()+", "+text, common.ColorPink), nil, false)
}

func (f *Feature) handleShip(_ context.Context, inv *common.Invocation) error {
	first, firstMember := target(inv, "member1")
	second, secondMember := target(inv, "member2")

	percent := ShipPercentage(first.ID, second.ID)
	status, color := ShipStatus(percent)
	name := ShipName(displayName(first, firstMember), displayName(second, secondMember))

	embed := common.NewEmbed("💘 "+name, first.Mention()+" + "+second.Mention(), color)
	common.AddField(embed, "Love Percentage", fmt.Sprintf("%d%%", percent), true)
	common.AddField(embed, "Status", status, true)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleAvatar(_ context.Context, inv *common.Invocation) error {
	user, member := target(inv, "member")

	avatar := user.AvatarURL("1024")
	if member != nil && member.Avatar != "" {
		member.GuildID = inv.GuildID()
		avatar = member.AvatarURL("1024")
	}

	embed := common.NewEmbed(displayName(user, member)+"'s Avatar", "", memberColor(inv.Session, inv.GuildID(), member))
	embed.Image = &discordgo.MessageEmbedImage{URL: avatar}
	return inv.RespondEmbed(embed, nil, false)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (f *Feature) handleUserInfo(_ context.Context, inv *common.Invocation) error {
	user, member := target(inv, "member")

	embed := common.NewEmbed("User Info - "+user.String(), "", memberColor(inv.Session, inv.GuildID(), member))
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")}

	nick := "None"
	if member != nil && member.Nick != "" {
		nick = member.Nick
	}
	common.AddField(embed, "ID", user.ID, true)
	common.AddField(embed, "Nickname", nick, true)
	common.AddField(embed, "Bot?", yesNo(user.Bot), true)

	if created, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
		common.AddField(embed, "Account Created", common.FormatDiscordTimestamp(created, "R"), true)
	}
	if member != nil && !member.JoinedAt.IsZero() {
		common.AddField(embed, "Joined Server", common.FormatDiscordTimestamp(member.JoinedAt, "R"), true)
	}

	if member != nil && len(member.Roles) > 0 {
		value := fmt.Sprintf("%d roles", len(member.Roles))
		if len(member.Roles) <= 10 {
			mentions := make([]string, len(member.Roles))
			for i, id := range member.Roles {
				mentions[i] = "<@&" + id + ">"
			}
			value = strings.Join(mentions, ", ")
		}
		common.AddField(embed, fmt.Sprintf("Roles (%d)", len(member.Roles)), value, false)
	}

	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleServerInfo(_ context.Context, inv *common.Invocation) error {
	guild, err := inv.Session.GuildWithCounts(inv.GuildID())
	if err != nil {
		return common.NewSystemError(err, "failed to load guild")
	}

	channels := "?"
	if list, err := inv.Session.GuildChannels(inv.GuildID()); err == nil {
		channels = strconv.Itoa(len(list))
	}

	embed := common.NewEmbed(guild.Name, "", common.ColorInfo)
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}

	created := time.Time{}
	if t, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		created = t
	}

	common.AddField(embed, "Server ID", guild.ID, true)
	common.AddField(embed, "Owner", common.UserMention(guild.OwnerID), true)
	common.AddField(embed, "Created", common.FormatDiscordTimestamp(created, "R"), true)
	common.AddField(embed, "Members", common.FormatNumber(int64(guild.ApproximateMemberCount)), true)
	common.AddField(embed, "Roles", strconv.Itoa(len(guild.Roles)), true)
	common.AddField(embed, "Channels", channels, true)
	common.AddField(embed, "Boost Level", strconv.Itoa(int(guild.PremiumTier)), true)
	common.AddField(embed, "Boosts", strconv.Itoa(guild.PremiumSubscriptionCount), true)

	return inv.RespondEmbed(embed, nil, false)
}
