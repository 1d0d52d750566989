package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/usecase"
)

// conversationAPI is the Slack Web API surface the handlers use.
type conversationAPI interface {
	Permalink(ctx context.Context, channel, ts string) (string, error)
	MessageText(ctx context.Context, channel, ts string) (string, error)
	PostEphemeral(ctx context.Context, channel, userID, text string) error
	PostChannel(ctx context.Context, channel, text string) error
}

var _ conversationAPI = (*Client)(nil)

// UseCases bundles the application operations the bot dispatches to.
type UseCases struct {
	SubmitTrack   *usecase.SubmitTrack
	RateTrack     *usecase.RateTrack
	RemoveRating  *usecase.RemoveRating
	Leaderboard   *usecase.Leaderboard
	UnratedTracks *usecase.UnratedTracks
	TrackStats    *usecase.TrackStats
	UserStats     *usecase.UserStats
	ArtistStats   *usecase.ArtistStats
	Ping          *usecase.Ping
}

// rateTexts holds the user-facing texts that differ between adding and
// removing a reaction.
type rateTexts struct {
	notOriginal string // format string taking the original message link
	ratingState string
}

var reactionAddedTexts = rateTexts{
	notOriginal: "Reactions can only be added to the original song message." +
		" Please react to the original message here: <%s|View original message>.",
	ratingState: "You have already reacted to this song. Please remove your previous reaction first.",
}

var reactionRemovedTexts = rateTexts{
	notOriginal: "Reactions can only be removed from the original song message." +
		" Please remove your reaction from the original message here: <%s|View original message>.",
	ratingState: "You have not reacted to this song yet.",
}

// Handlers maps Slack events and slash commands onto use cases.
type Handlers struct {
	api conversationAPI
	dir *Directory
	uc  UseCases
	log *slog.Logger
}

// NewHandlers creates the event handlers.
func NewHandlers(api conversationAPI, dir *Directory, uc UseCases, log *slog.Logger) *Handlers {
	return &Handlers{
		api: api,
		dir: dir,
		uc:  uc,
		log: log,
	}
}

// HandleMessage stores the linked track when a channel message contains a
// Spotify track link. Everything else is ignored without logging to keep
// the log quiet.
func (h *Handlers) HandleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	if ev.SubType != "" || ev.BotID != "" || ev.User == "" {
		return
	}
	if !strings.Contains(ev.Text, domain.TrackURLPrefix) {
		return
	}
	trackID := domain.ExtractTrackID(ev.Text)
	if trackID == "" {
		h.log.Warn("no valid track id in message", "channel", ev.Channel)
		h.ephemeral(ctx, ev.Channel, ev.User, "No valid Spotify track ID found in the message.")
		return
	}

	// The submission still goes through without a permalink; ratings on
	// the track stay blocked until one is backfilled.
	permalink, err := h.api.Permalink(ctx, ev.Channel, ev.TimeStamp)
	if err != nil {
		h.log.Error("permalink lookup failed", "channel", ev.Channel, "error", err)
	}

	out, err := h.uc.SubmitTrack.Execute(ctx, usecase.SubmitTrackInput{
		UserID:    ev.User,
		Text:      ev.Text,
		Permalink: permalink,
	})
	switch {
	case errors.Is(err, domain.ErrTrackLookup):
		h.log.Error("track lookup failed", "track_id", trackID, "error", err)
		h.ephemeral(ctx, ev.Channel, ev.User, "Could not fetch track details. Please try again later.")
		return
	case err != nil:
		h.log.Error("submit track failed", "track_id", trackID, "error", err)
		return
	}

	if out.AlreadyExists {
		h.log.Info("track resubmitted", "track_id", trackID, "user", ev.User)
		h.ephemeral(ctx, ev.Channel, ev.User, TrackExists(out.Track.MessageLink))
		return
	}
	h.log.Info("track saved", "track_id", trackID, "user", ev.User)
	h.ephemeral(ctx, ev.Channel, ev.User, TrackSaved(out.Details))
}

// HandleReactionAdded records a rating when a scoring emoji lands on the
// original submission message of a stored track.
func (h *Handlers) HandleReactionAdded(ctx context.Context, ev *slackevents.ReactionAddedEvent) {
	if !domain.IsRatingEmoji(ev.Reaction) {
		return
	}
	if ev.Item.Channel == "" || ev.Item.Timestamp == "" {
		h.log.Warn("reaction event without message item")
		return
	}

	trackID, ok := h.reactedTrackID(ctx, ev.Item.Channel, ev.Item.Timestamp)
	if !ok {
		return
	}

	out, err := h.uc.RateTrack.Execute(ctx, usecase.RateTrackInput{
		TrackID:   trackID,
		UserID:    ev.User,
		Emoji:     ev.Reaction,
		MessageTS: ev.Item.Timestamp,
	})
	if err != nil {
		h.rateError(ctx, ev.Item.Channel, ev.User, trackID, err, reactionAddedTexts)
		return
	}
	if out.Ignored {
		h.log.Warn("reaction carries no score", "reaction", ev.Reaction)
		return
	}
	h.log.Info("rating recorded", "track_id", trackID, "user", ev.User, "score", out.Score)
}

// HandleReactionRemoved withdraws a rating when the matching scoring
// emoji is removed from the original submission message.
func (h *Handlers) HandleReactionRemoved(ctx context.Context, ev *slackevents.ReactionRemovedEvent) {
	if !domain.IsRatingEmoji(ev.Reaction) {
		return
	}
	if ev.Item.Channel == "" || ev.Item.Timestamp == "" {
		h.log.Warn("reaction event without message item")
		return
	}

	trackID, ok := h.reactedTrackID(ctx, ev.Item.Channel, ev.Item.Timestamp)
	if !ok {
		return
	}

	out, err := h.uc.RemoveRating.Execute(ctx, usecase.RemoveRatingInput{
		TrackID:   trackID,
		UserID:    ev.User,
		Emoji:     ev.Reaction,
		MessageTS: ev.Item.Timestamp,
	})
	if err != nil {
		h.rateError(ctx, ev.Item.Channel, ev.User, trackID, err, reactionRemovedTexts)
		return
	}
	if out.Track == nil {
		return
	}
	if !out.Removed {
		h.log.Warn("removed reaction does not match stored rating", "track_id", trackID, "user", ev.User)
		return
	}
	h.log.Info("rating removed", "track_id", trackID, "user", ev.User)
}

// HandleCommand dispatches a slash command.
func (h *Handlers) HandleCommand(ctx context.Context, cmd slack.SlashCommand) {
	h.log.Info("slash command received", "command", cmd.Command, "user", cmd.UserID)
	switch cmd.Command {
	case "/ping":
		h.respond(ctx, cmd, h.uc.Ping.Execute(ctx).Message, false)
	case "/leaderboard":
		h.leaderboardCommand(ctx, cmd)
	case "/unrated":
		h.unratedCommand(ctx, cmd)
	case "/stats":
		h.statsCommand(ctx, cmd)
	default:
		h.log.Warn("unknown slash command", "command", cmd.Command)
	}
}

func (h *Handlers) leaderboardCommand(ctx context.Context, cmd slack.SlashCommand) {
	args, ok := h.commandArgs(ctx, cmd, "public", "count")
	if !ok {
		return
	}
	count, err := args.Count("count", 0)
	if err != nil {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Invalid count specified. Please provide a positive integer.")
		return
	}
	out, err := h.uc.Leaderboard.Execute(ctx, usecase.LeaderboardInput{Limit: count})
	if err != nil {
		h.log.Error("leaderboard failed", "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "An error occurred while fetching the leaderboard. Please try again later.")
		return
	}
	if len(out.Entries) == 0 {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "No songs found in the database.")
		return
	}
	h.respond(ctx, cmd, Leaderboard(out.Entries), args.Bool("public"))
}

func (h *Handlers) unratedCommand(ctx context.Context, cmd slack.SlashCommand) {
	args, ok := h.commandArgs(ctx, cmd, "public", "user")
	if !ok {
		return
	}
	userID, ok := h.targetUser(ctx, cmd, args)
	if !ok {
		return
	}
	name, err := h.dir.Name(ctx, userID)
	if err != nil {
		h.log.Error("user name lookup failed", "user", userID, "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Could not find user information. Please try again later.")
		return
	}
	out, err := h.uc.UnratedTracks.Execute(ctx, usecase.UnratedTracksInput{UserID: userID})
	if err != nil {
		h.log.Error("unrated tracks failed", "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "An error occurred while fetching your unrated songs. Please try again later.")
		return
	}
	if len(out.Tracks) == 0 {
		h.respond(ctx, cmd, fmt.Sprintf("No unrated songs found for %s.", name), args.Bool("public"))
		return
	}
	h.respond(ctx, cmd, UnratedTable(out.Tracks, name), args.Bool("public"))
}

func (h *Handlers) statsCommand(ctx context.Context, cmd slack.SlashCommand) {
	args, ok := h.commandArgs(ctx, cmd, "public", "user", "song", "artist")
	if !ok {
		return
	}
	provided := 0
	for _, flag := range []string{"user", "song", "artist"} {
		if args.Has(flag) {
			provided++
		}
	}
	if provided != 1 {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Please specify exactly one of the following: --user, --song, or --artist.")
		return
	}
	public := args.Bool("public")
	switch {
	case args.Has("user"):
		h.userStatsCommand(ctx, cmd, args, public)
	case args.Has("song"):
		h.trackStatsCommand(ctx, cmd, args.String("song"), public)
	default:
		h.artistStatsCommand(ctx, cmd, args.String("artist"), public)
	}
}

func (h *Handlers) userStatsCommand(ctx context.Context, cmd slack.SlashCommand, args *domain.CommandArgs, public bool) {
	userID, ok := h.targetUser(ctx, cmd, args)
	if !ok {
		return
	}
	name, err := h.dir.Name(ctx, userID)
	if err != nil {
		h.log.Error("user name lookup failed", "user", userID, "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Could not find user information. Please try again later.")
		return
	}
	out, err := h.uc.UserStats.Execute(ctx, usecase.UserStatsInput{UserID: userID})
	if err != nil {
		h.log.Error("user stats failed", "user", userID, "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "An error occurred while fetching statistics. Please try again later.")
		return
	}
	h.respond(ctx, cmd, UserStatsMessage(name, out.Stats), public)
}

func (h *Handlers) trackStatsCommand(ctx context.Context, cmd slack.SlashCommand, query string, public bool) {
	if query == "" || query == "true" {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Please specify a song using the --song argument.")
		return
	}
	out, err := h.uc.TrackStats.Execute(ctx, usecase.TrackStatsInput{Query: query})
	switch {
	case errors.Is(err, domain.ErrTrackNotFound):
		if id := trackIDFromQuery(query); id != "" {
			h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("No song found with the ID '%s'.", id))
		} else {
			h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("No songs found with the name '%s'.", query))
		}
		return
	case err != nil:
		h.log.Error("track stats failed", "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "An error occurred while fetching statistics. Please try again later.")
		return
	}
	if len(out.Candidates) > 0 {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, AmbiguousTracks(query, out.Candidates))
		return
	}
	h.respond(ctx, cmd, h.renderTrackStats(ctx, out.Stats), public)
}

func (h *Handlers) artistStatsCommand(ctx context.Context, cmd slack.SlashCommand, name string, public bool) {
	if name == "" || name == "true" {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Please specify an artist using the --artist argument.")
		return
	}
	out, err := h.uc.ArtistStats.Execute(ctx, usecase.ArtistStatsInput{Name: name})
	switch {
	case errors.Is(err, domain.ErrArtistNotFound):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("No artist found with the name '%s'.", name))
		return
	case err != nil:
		h.log.Error("artist stats failed", "error", err)
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "An error occurred while fetching statistics. Please try again later.")
		return
	}
	h.respond(ctx, cmd, ArtistStatsMessage(out.Stats), public)
}

// reactedTrackID resolves the reacted-on message and extracts its track ID.
func (h *Handlers) reactedTrackID(ctx context.Context, channel, ts string) (string, bool) {
	text, err := h.api.MessageText(ctx, channel, ts)
	if err != nil {
		if errors.Is(err, errNoMessage) {
			h.log.Warn("no message found for reaction", "channel", channel, "ts", ts)
		} else {
			h.log.Error("fetch reacted message failed", "error", err)
		}
		return "", false
	}
	trackID := domain.ExtractTrackID(text)
	if trackID == "" {
		h.log.Warn("no valid track id in reacted message", "channel", channel)
		return "", false
	}
	return trackID, true
}

// rateError turns rating sentinels into the matching user notification.
func (h *Handlers) rateError(ctx context.Context, channel, userID, trackID string, err error, texts rateTexts) {
	var notOriginal *domain.NotOriginalError
	switch {
	case errors.Is(err, domain.ErrTrackNotFound):
		h.log.Error("track not stored", "track_id", trackID)
		h.post(ctx, channel, "This song is not in the database. Please add it first.")
	case errors.Is(err, domain.ErrNoMessageLink):
		h.log.Error("track has no message link", "track_id", trackID)
		h.post(ctx, channel, "No original message link found for this song. Please add the song first.")
	case errors.As(err, &notOriginal):
		h.log.Warn("reaction not on original message", "track_id", trackID)
		h.ephemeral(ctx, channel, userID, fmt.Sprintf(texts.notOriginal, notOriginal.Link))
	case errors.Is(err, domain.ErrAlreadyRated), errors.Is(err, domain.ErrRatingNotFound):
		h.log.Warn("rating state conflict", "track_id", trackID, "user", userID)
		h.ephemeral(ctx, channel, userID, texts.ratingState)
	default:
		h.log.Error("rating update failed", "track_id", trackID, "error", err)
	}
}

// renderTrackStats resolves display names and renders the stats card.
func (h *Handlers) renderTrackStats(ctx context.Context, stats *domain.TrackStats) string {
	submitter := "Unknown User"
	if stats.Track.SubmittedBy != "" {
		if name, err := h.dir.Name(ctx, stats.Track.SubmittedBy); err == nil {
			submitter = name
		}
	}
	raters := make([]RaterScore, 0, len(stats.Ratings))
	for _, r := range stats.Ratings {
		name, err := h.dir.Name(ctx, r.UserID)
		if err != nil {
			name = r.UserID
		}
		raters = append(raters, RaterScore{Name: name, Score: r.Score})
	}
	return TrackStatsMessage(stats.Track, submitter, SubmittedAt(stats.Track.MessageLink), stats.Average, raters)
}

// commandArgs parses the command text and rejects unknown flags. A false
// return means the user was already told what is wrong.
func (h *Handlers) commandArgs(ctx context.Context, cmd slack.SlashCommand, allowed ...string) (*domain.CommandArgs, bool) {
	args, err := domain.ParseCommandArgs(cmd.Text)
	if err != nil {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Invalid arguments: "+err.Error()+".")
		return nil, false
	}
	if unknown := args.Unknown(allowed...); len(unknown) > 0 {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Unknown arguments: --"+strings.Join(unknown, ", --")+".")
		return nil, false
	}
	return args, true
}

// targetUser resolves the --user flag to a user ID, defaulting to the
// invoking user. A false return means the user was already notified.
func (h *Handlers) targetUser(ctx context.Context, cmd slack.SlashCommand, args *domain.CommandArgs) (string, bool) {
	if !args.Has("user") {
		return cmd.UserID, true
	}
	userID := domain.ParseUserMention(args.String("user"))
	if userID == "" {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Invalid user mention format. Please use @username format.")
		return "", false
	}
	if !h.dir.Exists(ctx, userID) {
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("User `%s` does not exist or is not accessible.", userID))
		return "", false
	}
	return userID, true
}

// respond answers a slash command, publicly when asked.
func (h *Handlers) respond(ctx context.Context, cmd slack.SlashCommand, text string, public bool) {
	if public {
		h.post(ctx, cmd.ChannelID, text)
		return
	}
	h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, text)
}

func (h *Handlers) ephemeral(ctx context.Context, channel, userID, text string) {
	if err := h.api.PostEphemeral(ctx, channel, userID, text); err != nil {
		h.log.Error("send ephemeral failed", "channel", channel, "error", err)
	}
}

func (h *Handlers) post(ctx context.Context, channel, text string) {
	if err := h.api.PostChannel(ctx, channel, text); err != nil {
		h.log.Error("send message failed", "channel", channel, "error", err)
	}
}

// trackIDFromQuery mirrors the stats use case's ID resolution so error
// texts can name the ID the user gave.
func trackIDFromQuery(query string) string {
	if id := domain.ExtractTrackID(query); id != "" {
		return id
	}
	if domain.ValidTrackID(query) {
		return query
	}
	return ""
}
