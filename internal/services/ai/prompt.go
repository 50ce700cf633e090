package ai

import (
	"strings"

	"github.com/mindwell/wellness-api/internal/models"
)

const (
	// MaxPromptLength is the maximum length for a synthesized follow-up prompt
	MaxPromptLength = 100
	// MaxContextMessages is the number of recent user messages used as context
	MaxContextMessages = 3
	// MaxSentimentEntries is the number of recent chat entries averaged for mood
	MaxSentimentEntries = 5

	// FallbackFollowUp is returned when no chat history or generation is available
	FallbackFollowUp = "How are you feeling today? I'm here whenever you want to talk."
)

// Sentiment proxies for entries without a stored score.
const (
	stressSentiment   = 0.2
	positiveSentiment = 0.8
	neutralSentiment  = 0.5
)

var stressWords = []string{
	"stress", "stressed", "anxious", "anxiety", "overwhelmed",
	"sad", "depressed", "tired", "worried", "afraid", "lonely",
}

var positiveWords = []string{
	"happy", "great", "good", "excited", "calm",
	"relaxed", "better", "grateful", "hopeful", "joy",
}

// Mood prompt templates for the generative-music collaborator, ordered from
// lowest to highest sentiment.
var moodPrompts = []struct {
	threshold float64
	prompt    string
}{
	{0.3, "slow ambient piano with soft rain sounds, deeply calming and reassuring"},
	{0.5, "gentle acoustic guitar with warm strings, soothing and comforting"},
	{0.7, "light uplifting melody with soft percussion, hopeful and steady"},
}

const energeticMoodPrompt = "bright energetic instrumental with playful rhythms, matching a positive mood"

// RecentUserMessages extracts up to MaxContextMessages of the most recent
// user messages from history, oldest first. History is expected newest first,
// as returned by the chat store.
func RecentUserMessages(history []*models.ChatEntry) []string {
	var messages []string
	for _, entry := range history {
		if entry == nil || strings.TrimSpace(entry.UserMessage) == "" {
			continue
		}
		messages = append(messages, entry.UserMessage)
		if len(messages) == MaxContextMessages {
			break
		}
	}

	// Reverse into chronological order for the prompt.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

// PostProcessPrompt strips wrapping quotes and truncates to maxLen
func PostProcessPrompt(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// EntrySentiment returns the sentiment for a chat entry, using the stored
// score where present and a keyword heuristic otherwise
func EntrySentiment(entry *models.ChatEntry) float64 {
	if entry == nil {
		return neutralSentiment
	}
	if entry.SentimentScore != nil {
		return *entry.SentimentScore
	}

	text := strings.ToLower(entry.UserMessage)
	for _, w := range stressWords {
		if strings.Contains(text, w) {
			return stressSentiment
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			return positiveSentiment
		}
	}
	return neutralSentiment
}

// AverageSentiment averages sentiment over up to MaxSentimentEntries recent
// entries. Empty history reads as neutral.
func AverageSentiment(history []*models.ChatEntry) float64 {
	if len(history) == 0 {
		return neutralSentiment
	}

	entries := history
	if len(entries) > MaxSentimentEntries {
		entries = entries[:MaxSentimentEntries]
	}

	var sum float64
	for _, entry := range entries {
		sum += EntrySentiment(entry)
	}
	return sum / float64(len(entries))
}

// MoodPromptFor maps an averaged sentiment to one of the fixed mood templates
func MoodPromptFor(sentiment float64) string {
	for _, mp := range moodPrompts {
		if sentiment < mp.threshold {
			return mp.prompt
		}
	}
	return energeticMoodPrompt
}
