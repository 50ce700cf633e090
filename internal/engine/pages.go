package engine

import "strings"

// Category classifies a page for score weighting.
type Category string

const (
	CategoryMentalHealth    Category = "mental_health"
	CategoryCreativeTherapy Category = "creative_therapy"
	CategoryEntertainment   Category = "entertainment"
	CategoryNavigation      Category = "navigation"
	CategoryAccount         Category = "account"
	CategoryOther           Category = "other"
)

type pageInfo struct {
	category Category
	weight   float64
}

// Therapeutic destinations score higher than navigation chrome. Unknown
// pages fall back to CategoryOther with weight 0.5.
var pageCatalog = map[string]pageInfo{
	"/chat":             {CategoryMentalHealth, 1.0},
	"/chat-bot":         {CategoryMentalHealth, 1.0},
	"/music_generation": {CategoryCreativeTherapy, 0.9},
	"/music-player":     {CategoryEntertainment, 0.7},
	"/home":             {CategoryNavigation, 0.3},
	"/dashboard":        {CategoryNavigation, 0.3},
	"/profile":          {CategoryAccount, 0.4},
	"/settings":         {CategoryAccount, 0.3},
}

// Pages with any engagement that are never recommendation candidates.
var excludedPages = map[string]bool{
	"/login":    true,
	"/register": true,
	"/logout":   true,
	"/":         true,
}

// PageExcluded reports whether a page is filtered out before scoring.
func PageExcluded(page string) bool {
	return excludedPages[page]
}

func lookupPage(page string) pageInfo {
	if info, ok := pageCatalog[page]; ok {
		return info
	}
	return pageInfo{CategoryOther, 0.5}
}

var displayNames = map[string]string{
	"/chat":             "Support Chat",
	"/chat-bot":         "MindChat",
	"/music_generation": "ZenBeats",
	"/music-player":     "Music Player",
	"/home":             "Home",
	"/dashboard":        "Dashboard",
	"/profile":          "User Profile",
	"/settings":         "Settings",
	"/selfcare":         "SelfCare",
	"/meditation":       "Meditation",
	"/assessment":       "Know Your Mind",
}

var pageFeatures = map[string]string{
	"/chat":             "Supportive conversations, chat history, personalized responses",
	"/chat-bot":         "MindChat: AI therapeutic conversations, voice chat, chat history",
	"/music_generation": "ZenBeats: mood-based therapy music, personalized playlists",
	"/music-player":     "Music Player: curated playlists and saved generated tracks",
	"/profile":          "User Account: profile management, preferences, settings",
	"/meditation":       "Meditation: guided sessions, mindfulness exercises",
	"/selfcare":         "SelfCare: wellness reports, personal insights, progress analytics",
}

// DisplayName returns a user-facing name for a page path. Unknown paths are
// title-cased from the path itself.
func DisplayName(page string) string {
	if name, ok := displayNames[page]; ok {
		return name
	}
	cleaned := strings.ReplaceAll(strings.Trim(page, "/"), "_", " ")
	cleaned = strings.ReplaceAll(cleaned, "-", " ")
	if cleaned == "" {
		return page
	}
	words := strings.Fields(cleaned)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Features returns a short blurb describing what the page offers.
func Features(page string) string {
	if f, ok := pageFeatures[page]; ok {
		return f
	}
	return "Explore platform features and capabilities"
}
