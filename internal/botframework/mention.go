package botframework

import "strings"

// TextWithoutMentions returns the activity text with the bot's @mentions removed and
// surrounding whitespace trimmed. Teams renders mentions inline as <at>Name</at>.
func TextWithoutMentions(a *Activity) string {
	text := a.Text
	for _, e := range a.Entities {
		if e.Type != "mention" || e.Mentioned == nil || e.Text == "" {
			continue
		}
		if e.Mentioned.ID == a.Recipient.ID {
			text = strings.ReplaceAll(text, e.Text, "")
		}
	}
	return strings.TrimSpace(stripAtTags(text))
}

// stripAtTags removes any <at>...</at> span left without a matching entity.
func stripAtTags(text string) string {
	for {
		start := strings.Index(text, "<at>")
		if start < 0 {
			return text
		}
		end := strings.Index(text[start:], "</at>")
		if end < 0 {
			return text
		}
		text = text[:start] + text[start+end+len("</at>"):]
	}
}
