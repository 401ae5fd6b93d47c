package profile

// Profile carries the presentational strings and canned reply set of a widget.
type Profile struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	BotName     string   `json:"botName,omitempty" yaml:"botName"`
	Placeholder string   `json:"placeholder" yaml:"placeholder"`
	TypingLabel string   `json:"typingLabel" yaml:"typingLabel"`
	Replies     []string `json:"replies" yaml:"replies"`
}

// DefaultID is the profile mounted when a client does not ask for one.
const DefaultID = "support"

// Seed provides the built-in profiles.
func Seed() []Profile {
	return []Profile{
		{
			ID:          DefaultID,
			Title:       "Support Chat",
			BotName:     "Bot",
			Placeholder: "Type a message...",
			TypingLabel: "Bot is typing...",
			Replies: []string{
				"Thank you for your message. We're here to assist!",
				"Can I help you with something else?",
				"Our team is working on your request.",
				"Feel free to ask anything!",
				"Thanks for reaching out!",
			},
		},
		{
			ID:          "sales",
			Title:       "Talk to Sales",
			BotName:     "Sales Bot",
			Placeholder: "Ask about plans and pricing...",
			TypingLabel: "Sales Bot is typing...",
			Replies: []string{
				"Thanks for your interest! A sales representative will follow up shortly.",
				"Happy to help you find the right plan.",
				"Would you like us to schedule a demo?",
			},
		},
	}
}

func (p Profile) withDefaults(fallback Profile) Profile {
	if p.Title == "" {
		p.Title = fallback.Title
	}
	if p.BotName == "" {
		p.BotName = fallback.BotName
	}
	if p.Placeholder == "" {
		p.Placeholder = fallback.Placeholder
	}
	if p.TypingLabel == "" {
		p.TypingLabel = fallback.TypingLabel
	}
	return p
}
