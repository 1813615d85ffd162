package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// dealColor is the embed accent (green).
const dealColor = 0x2ecc71

// discordSession abstracts the Discord API for testing.
type discordSession interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts deal notifications to a Discord channel as embeds.
type Discord struct {
	sess      discordSession
	channelID string
}

// DiscordOpts holds parameters for creating a Discord notifier.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session discordSession
}

// NewDiscord creates a Discord notifier. Messages are sent over the REST
// API; no gateway connection is opened.
func NewDiscord(opts DiscordOpts) (*Discord, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: discord: channel is required")
	}
	sess := opts.Session
	if sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("notify: discord: create session: %w", err)
		}
		sess = dg
	}
	return &Discord{sess: sess, channelID: opts.ChannelID}, nil
}

// DealAccepted implements Notifier.
func (d *Discord) DealAccepted(ctx context.Context, deal Deal) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Deal closed: " + deal.Commodity,
		Description: deal.Summary(),
		Color:       dealColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Final", Value: fmt.Sprintf("₹%d/kg", deal.FinalPrice), Inline: true},
			{Name: "Listed", Value: fmt.Sprintf("₹%d/kg", deal.ListedPrice), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "session " + deal.SessionID},
	}
	if deal.Quantity != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Quantity", Value: deal.Quantity, Inline: true})
	}
	if _, err := d.sess.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("notify: discord: send embed: %w", err)
	}
	return nil
}
