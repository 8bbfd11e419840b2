package utility

import (
	"context"
	"fmt"

	"cerealbot/bot/common"
	"cerealbot/scheduler"

	"github.com/bwmarrin/discordgo"
)

// ReminderSender posts a due reminder into the channel it was set in, mentioning its owner
func ReminderSender(s common.Session) scheduler.SenderFunc {
	return func(_ context.Context, r scheduler.Reminder) error {
		embed := common.NewEmbed("⏰ Reminder!", r.Message, common.ColorInfo)
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Reminder for " + r.Username}

		_, err := s.ChannelMessageSendComplex(r.ChannelID, &discordgo.MessageSend{
			Content: common.UserMention(r.UserID),
			Embeds:  []*discordgo.MessageEmbed{embed},
		})
		if err != nil {
			return fmt.Errorf("failed to send reminder %s: %w", r.ID, err)
		}
		return nil
	}
}
