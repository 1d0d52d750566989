package slackbot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hervold/jukeboard/internal/domain"
)

const trackStatsTemplate = `
*Song Details:*
🎵 %s by %s
💿 %s | 👤 %s | 🕒 %s
🔗 %s

*Rating Stats:*
⭐ Average Rating: %s (%d reactions)
👥 User Ratings:
%s
`

const userStatsTemplate = `
*📊 Statistics for %s*

*📈 Overview:*
• Songs submitted: %d
• Ratings given: %d
• Songs rated: %d/%d (%.1f%%)
• Average rating given: %.1f
• Average rating received: %.1f

%s

%s`

const artistStatsTemplate = `
*🎤 Statistics for %s*

*📈 Overview:*
• Songs submitted: %d
• Average rating: %s

%s`

// numberEmoji maps scores to keycap glyphs for display.
var numberEmoji = map[int]string{
	1:  "1️⃣",
	2:  "2️⃣",
	3:  "3️⃣",
	4:  "4️⃣",
	5:  "5️⃣",
	6:  "6️⃣",
	7:  "7️⃣",
	8:  "8️⃣",
	9:  "9️⃣",
	10: "🔟",
}

// NumberEmoji returns the keycap glyph for a score, or the plain number
// when no glyph exists.
func NumberEmoji(n int) string {
	if glyph, ok := numberEmoji[n]; ok {
		return glyph
	}
	return strconv.Itoa(n)
}

// RaterScore pairs a rater's display name with the score they gave.
type RaterScore struct {
	Name  string
	Score int
}

// Leaderboard renders the top tracks as a monospace table.
func Leaderboard(entries []domain.LeaderboardEntry) string {
	var b strings.Builder
	b.WriteString("*🎵 Top Songs Leaderboard*\n")
	b.WriteString("```")
	b.WriteString("Rank | Rating | Count | Song & Artist\n")
	b.WriteString("-----|--------|-------|----------------------------------------------\n")
	for i, e := range entries {
		rank := fmt.Sprintf("%dth", i+1)
		if i < 3 {
			rank = [...]string{"1st", "2nd", "3rd"}[i]
		}
		rating := "N/A"
		if e.Average > 0 {
			rating = fmt.Sprintf("%.1f", e.Average)
		}
		fmt.Fprintf(&b, "%-4s | %-6s | %-5d | %s\n", rank, rating, e.Count, truncate(e.Title+" - "+e.Artists, 45))
	}
	b.WriteString("```")
	return b.String()
}

// UnratedTable renders a user's rating backlog as a monospace table.
func UnratedTable(tracks []*domain.Track, userName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*🎵 Unrated Songs for %s 🎵*\n", userName)
	b.WriteString("```")
	b.WriteString("Title                          | Artists                  | Link\n")
	b.WriteString("-------------------------------|--------------------------|-----------------------------\n")
	for _, t := range tracks {
		link := fmt.Sprintf("<%s|*_Go to song_*>", t.MessageLink)
		fmt.Fprintf(&b, "%-30s | %-24s | %s\n", truncate(t.Title, 28), truncate(t.ArtistNames(), 24), link)
	}
	b.WriteString("```")
	return b.String()
}

// TrackStatsMessage renders the statistics card for a single track.
func TrackStatsMessage(track *domain.Track, submitter, submittedAt string, average float64, raters []RaterScore) string {
	avg := "N/A"
	if len(raters) > 0 {
		avg = fmt.Sprintf("%.1f", average)
	}
	link := "#"
	if track.MessageLink != "" {
		link = "<" + track.MessageLink + "|*_Go to song_*>"
	}
	ratings := "No user ratings."
	if len(raters) > 0 {
		lines := make([]string, len(raters))
		for i, r := range raters {
			lines[i] = r.Name + ": " + NumberEmoji(r.Score)
		}
		ratings = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(trackStatsTemplate,
		track.Title, track.ArtistNames(), track.Album, submitter, submittedAt,
		link, avg, len(raters), ratings)
}

// UserStatsMessage renders the statistics card for a user.
func UserStatsMessage(userName string, stats *domain.UserStats) string {
	return fmt.Sprintf(userStatsTemplate,
		userName, stats.Submitted, stats.RatingsGiven, stats.Rated, stats.Rateable,
		stats.RatedPercent, stats.AvgGiven, stats.AvgReceived,
		topTracksSection(stats.TopTracks), topArtistsSection(stats.TopArtists))
}

// ArtistStatsMessage renders the statistics card for an artist.
func ArtistStatsMessage(stats *domain.ArtistStats) string {
	avg := "N/A"
	if stats.Average > 0 {
		avg = fmt.Sprintf("%.1f", stats.Average)
	}
	return fmt.Sprintf(artistStatsTemplate, stats.Name, stats.Tracks, avg, topTracksSection(stats.TopTracks))
}

// SubmittedAt renders the submission time embedded in a permalink.
func SubmittedAt(link string) string {
	if link == "" {
		return "Unknown"
	}
	at, err := domain.PermalinkTime(link)
	if err != nil {
		return "Unknown time"
	}
	return at.Format("2006-01-02 15:04:05")
}

// TrackSaved renders the confirmation for a newly stored track.
func TrackSaved(d *domain.TrackDetails) string {
	names := make([]string, len(d.Artists))
	for i, a := range d.Artists {
		names[i] = a.Name
	}
	return "Track details saved successfully! 🎶\n" +
		"*Title:* " + d.Title + "\n" +
		"*Album:* " + d.Album + "\n" +
		"*Artists:* " + strings.Join(names, ", ") + "\n" +
		"*Release Date:* " + d.ReleaseDate + "\n"
}

// TrackExists renders the duplicate-submission notice. An empty link
// drops the pointer at the original message.
func TrackExists(link string) string {
	text := "Track already exists in the database! 🎵\n"
	if link != "" {
		text += "<" + link + "|View/rate the original message!>"
	}
	return text
}

// AmbiguousTracks renders the disambiguation list for a title query that
// matched several stored tracks.
func AmbiguousTracks(query string, matches []*domain.Track) string {
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("*%s* (Album: %s, ID: `%s`)", m.Title, m.Album, m.ID)
	}
	return fmt.Sprintf("Multiple songs found matching '%s'. "+
		"Please refine your query or use one of the track IDs below:\n%s",
		query, strings.Join(lines, "\n"))
}

func topTracksSection(tracks []domain.LeaderboardEntry) string {
	if len(tracks) == 0 {
		return "*🎵 Top Songs:*\nNo rated songs yet"
	}
	var b strings.Builder
	b.WriteString("*🎵 Top Songs:*\n")
	for i, t := range tracks {
		fmt.Fprintf(&b, "%d. %s - %s (%.1f⭐, %d ratings)\n", i+1, t.Title, t.Artists, t.Average, t.Count)
	}
	return b.String()
}

func topArtistsSection(artists []domain.ArtistCount) string {
	if len(artists) == 0 {
		return "*🎤 Top Artists:*\nNo songs submitted yet"
	}
	var b strings.Builder
	b.WriteString("*🎤 Top Artists:*\n")
	for i, a := range artists {
		fmt.Fprintf(&b, "%d. %s (%d songs, %.1f⭐ avg)\n", i+1, a.Name, a.Count, a.Average)
	}
	return b.String()
}

// truncate shortens s to at most max characters, ellipsis included.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
