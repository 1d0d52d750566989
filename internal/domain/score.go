package domain

// scoreByEmoji maps rating reaction emoji to scores. "zero" is part of the
// rating emoji set but carries a score of 0, so reacting with it never
// records a rating.
var scoreByEmoji = map[string]int{
	"zero":       0,
	"one":        1,
	"two":        2,
	"three":      3,
	"four":       4,
	"five":       5,
	"six":        6,
	"seven":      7,
	"eight":      8,
	"nine":       9,
	"keycap_ten": 10,
}

// EmojiScore returns the score for a reaction emoji. Emoji outside the
// rating set, and "zero", yield 0.
func EmojiScore(emoji string) int {
	return scoreByEmoji[emoji]
}

// IsRatingEmoji reports whether emoji belongs to the rating reaction set.
func IsRatingEmoji(emoji string) bool {
	_, ok := scoreByEmoji[emoji]
	return ok
}
