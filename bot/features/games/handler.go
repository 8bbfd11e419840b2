package games

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	choiceTruth = "truth"
	choiceDare  = "dare"
)

func (f *Feature) handleTruthOrDare(_ context.Context, inv *common.Invocation) error {
	id := f.sessions.Start(inv.UserID())

	embed := common.NewEmbed("🎲 Truth or Dare", "Choose Truth or Dare!", common.ColorPurple)
	buttons := common.ButtonRows(
		common.Button("Truth", registry.ComponentID(componentPrefix, id.String(), choiceTruth), discordgo.PrimaryButton, "💬"),
		common.Button("Dare", registry.ComponentID(componentPrefix, id.String(), choiceDare), discordgo.DangerButton, "🎯"),
	)
	return inv.RespondEmbed(embed, buttons, false)
}

func (f *Feature) handleTruthOrDareChoice(_ context.Context, inv *common.Invocation) error {
	parts := registry.ComponentParts(inv.CustomID)
	if len(parts) != 2 {
		return fmt.Errorf("malformed truth or dare custom id %q", inv.CustomID)
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return fmt.Errorf("malformed truth or dare session id: %w", err)
	}

	switch f.sessions.Choose(id, inv.UserID()) {
	case ChoiceNotStarter:
		return inv.Respond("This isn't your game!", true)
	case ChoiceClosed:
		log.WithField("session", id).Debug("Ignoring press on closed truth or dare prompt")
		return inv.Acknowledge()
	}

	var embed *discordgo.MessageEmbed
	if parts[1] == choiceDare {
		embed = common.NewEmbed("🎯 Dare", pick(f, dareChallenges), common.ColorDanger)
	} else {
		embed = common.NewEmbed("💬 Truth", pick(f, truthQuestions), common.ColorInfo)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Asked by " + inv.User().Username}
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleWouldYouRather(_ context.Context, inv *common.Invocation) error {
	embed := common.NewEmbed("🤔 Would You Rather", pick(f, wouldYouRather), common.ColorGold)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Choose your option!"}
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleNeverHaveIEver(_ context.Context, inv *common.Invocation) error {
	embed := common.NewEmbed("🙈 Never Have I Ever", pick(f, neverHaveIEver), common.ColorSuccess)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Have you done this?"}
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleEightBall(_ context.Context, inv *common.Invocation) error {
	embed := common.NewEmbed("🎱 Magic 8-Ball", "", common.ColorInfo)
	common.AddField(embed, "Question", inv.Options.String("question", ""), false)
	common.AddField(embed, "Answer", pick(f, eightBallAnswers), false)
	return inv.RespondEmbed(embed, nil, false)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (f *Feature) handleRPS(_ context.Context, inv *common.Invocation) error {
	choice := strings.ToLower(inv.Options.String("choice", ""))
	botChoice := pick(f, []string{"rock", "paper", "scissors"})

	result, color := "🤝 It's a tie!", common.ColorGold
	switch RPSOutcome(choice, botChoice) {
	case 1:
		result, color = "🎉 You win!", common.ColorSuccess
	case -1:
		result, color = "😔 You lose!", common.ColorDanger
	}

	embed := common.NewEmbed("✊ Rock Paper Scissors", "", color)
	common.AddField(embed, "Your choice", capitalize(choice), true)
	common.AddField(embed, "My choice", capitalize(botChoice), true)
	common.AddField(embed, "Result", result, false)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleFlip(_ context.Context, inv *common.Invocation) error {
	side := pick(f, []string{"Heads", "Tails"})
	embed := common.NewEmbed("🪙 Coin Flip", fmt.Sprintf("The coin landed on **%s**!", side), common.ColorGold)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleRoll(_ context.Context, inv *common.Invocation) error {
	count, sides, err := ParseDice(inv.Options.String("dice", "1d6"))
	if errors.Is(err, ErrTooManyDice) {
		return common.NewUserError(fmt.Sprintf("❌ Too many dice or sides! Max: %dd%d", maxDice, maxSides), "dice out of range")
	}
	if err != nil {
		return common.NewUserError("❌ Invalid format! Use NdN (e.g., 2d6)", "malformed dice")
	}

	rolls := make([]string, count)
	total := 0
	for i := range rolls {
		n := f.intN(sides) + 1
		total += n
		rolls[i] = strconv.Itoa(n)
	}

	embed := common.NewEmbed("🎲 Dice Roll", "", common.ColorInfo)
	common.AddField(embed, "Rolls", strings.Join(rolls, ", "), false)
	common.AddField(embed, "Total", strconv.Itoa(total), false)
	return inv.RespondEmbed(embed, nil, false)
}
