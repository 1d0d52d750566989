package slackbot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/infra/logging"
	"github.com/hervold/jukeboard/internal/testutil"
	"github.com/hervold/jukeboard/internal/usecase"
)

const (
	testChannel   = "C0123ABCD"
	testUserID    = "U0ALICE"
	raterID       = "U0BOB"
	testTrackID   = "6rqhFgbbKwnb9MLmUQDhG6"
	testTrackLink = "https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6"
	testPermalink = "https://jukeboard.slack.com/archives/C0123ABCD/p1727628271123456"
	originalTS    = "1727628271.123456"
)

// stubAPI is an in-memory conversationAPI and userAPI that records what
// the handlers send.
type stubAPI struct {
	names        map[string]string
	permalink    string
	permalinkErr error
	messageText  string
	messageErr   error
	ephemerals   []string
	posts        []string
	messageCalls int
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		names:     map[string]string{testUserID: "alice", raterID: "bob"},
		permalink: testPermalink,
	}
}

func (s *stubAPI) Permalink(_ context.Context, _, _ string) (string, error) {
	if s.permalinkErr != nil {
		return "", s.permalinkErr
	}
	return s.permalink, nil
}

func (s *stubAPI) MessageText(_ context.Context, _, _ string) (string, error) {
	s.messageCalls++
	if s.messageErr != nil {
		return "", s.messageErr
	}
	return s.messageText, nil
}

func (s *stubAPI) PostEphemeral(_ context.Context, _, _, text string) error {
	s.ephemerals = append(s.ephemerals, text)
	return nil
}

func (s *stubAPI) PostChannel(_ context.Context, _, text string) error {
	s.posts = append(s.posts, text)
	return nil
}

func (s *stubAPI) UserName(_ context.Context, userID string) (string, error) {
	name, ok := s.names[userID]
	if !ok {
		return "", errors.New("users.info failed: user_not_found")
	}
	return name, nil
}

// newTestHandlers wires real use cases over in-memory doubles.
func newTestHandlers(api *stubAPI) (*Handlers, *testutil.MockTrackRepository, *testutil.MockCatalog) {
	repo := testutil.NewMockTrackRepository()
	catalog := testutil.NewMockCatalog()
	clock := &testutil.MockClock{NowTime: time.Date(2024, 9, 29, 17, 24, 31, 0, time.UTC)}
	uc := UseCases{
		SubmitTrack:   usecase.NewSubmitTrack(repo, catalog, clock),
		RateTrack:     usecase.NewRateTrack(repo, clock),
		RemoveRating:  usecase.NewRemoveRating(repo),
		Leaderboard:   usecase.NewLeaderboard(repo, 10),
		UnratedTracks: usecase.NewUnratedTracks(repo),
		TrackStats:    usecase.NewTrackStats(repo),
		UserStats:     usecase.NewUserStats(repo),
		ArtistStats:   usecase.NewArtistStats(repo),
		Ping:          usecase.NewPing(),
	}
	h := NewHandlers(api, NewDirectory(api), uc, logging.Discard().Logger)
	return h, repo, catalog
}

func seedStoredTrack(repo *testutil.MockTrackRepository) *domain.Track {
	track := &domain.Track{
		ID:          testTrackID,
		Title:       "Bohemian Rhapsody",
		Album:       "A Night at the Opera",
		SubmittedBy: testUserID,
		MessageLink: testPermalink,
		Artists:     []domain.Artist{{Name: "Queen"}},
	}
	repo.Tracks[track.ID] = track
	return track
}

func testDetails() *domain.TrackDetails {
	return &domain.TrackDetails{
		ID:          testTrackID,
		Title:       "Bohemian Rhapsody",
		Album:       "A Night at the Opera",
		ReleaseDate: "1975-11-21",
		Artists:     []domain.Artist{{Name: "Queen"}},
	}
}

func messageEvent(text string) *slackevents.MessageEvent {
	return &slackevents.MessageEvent{
		Type:      "message",
		User:      testUserID,
		Text:      text,
		TimeStamp: originalTS,
		Channel:   testChannel,
	}
}

func addedEvent(emoji, ts string) *slackevents.ReactionAddedEvent {
	return &slackevents.ReactionAddedEvent{
		Type:     "reaction_added",
		User:     raterID,
		Reaction: emoji,
		Item: slackevents.Item{
			Type:      "message",
			Channel:   testChannel,
			Timestamp: ts,
		},
	}
}

func removedEvent(emoji, ts string) *slackevents.ReactionRemovedEvent {
	return &slackevents.ReactionRemovedEvent{
		Type:     "reaction_removed",
		User:     raterID,
		Reaction: emoji,
		Item: slackevents.Item{
			Type:      "message",
			Channel:   testChannel,
			Timestamp: ts,
		},
	}
}

func slashCommand(command, text string) slack.SlashCommand {
	return slack.SlashCommand{
		Command:   command,
		Text:      text,
		UserID:    testUserID,
		ChannelID: testChannel,
	}
}

func TestHandleMessage_SavesTrack(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, catalog := newTestHandlers(api)
	catalog.Details[testTrackID] = testDetails()

	// Execute
	h.HandleMessage(context.Background(), messageEvent("check this out "+testTrackLink))

	// Assert
	track, ok := repo.Tracks[testTrackID]
	require.True(t, ok)
	assert.Equal(t, testUserID, track.SubmittedBy)
	assert.Equal(t, testPermalink, track.MessageLink)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, TrackSaved(testDetails()), api.ephemerals[0])
}

func TestHandleMessage_IgnoresNonSubmissions(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)

	// Execute
	h.HandleMessage(context.Background(), messageEvent("no links here"))
	botEv := messageEvent(testTrackLink)
	botEv.BotID = "B0123"
	h.HandleMessage(context.Background(), botEv)
	editedEv := messageEvent(testTrackLink)
	editedEv.SubType = "message_changed"
	h.HandleMessage(context.Background(), editedEv)

	// Assert
	assert.Empty(t, repo.Tracks)
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}

func TestHandleMessage_InvalidTrackLink(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)

	// Execute
	h.HandleMessage(context.Background(), messageEvent("https://open.spotify.com/track/"))

	// Assert
	assert.Empty(t, repo.Tracks)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "No valid Spotify track ID found in the message.", api.ephemerals[0])
}

func TestHandleMessage_DuplicateTrack(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleMessage(context.Background(), messageEvent(testTrackLink))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, TrackExists(testPermalink), api.ephemerals[0])
}

func TestHandleMessage_CatalogDown(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)

	// Execute
	h.HandleMessage(context.Background(), messageEvent(testTrackLink))

	// Assert
	assert.Empty(t, repo.Tracks)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "Could not fetch track details. Please try again later.", api.ephemerals[0])
}

func TestHandleMessage_PermalinkFailure(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.permalinkErr = errors.New("chat.getPermalink failed")
	h, repo, catalog := newTestHandlers(api)
	catalog.Details[testTrackID] = testDetails()

	// Execute
	h.HandleMessage(context.Background(), messageEvent(testTrackLink))

	// Assert
	track, ok := repo.Tracks[testTrackID]
	require.True(t, ok)
	assert.Empty(t, track.MessageLink)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, TrackSaved(testDetails()), api.ephemerals[0])
}

func TestHandleReactionAdded_RecordsRating(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = "listen to " + testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("seven", originalTS))

	// Assert
	ratings := repo.TrackRatings[testTrackID]
	require.Len(t, ratings, 1)
	assert.Equal(t, raterID, ratings[0].UserID)
	assert.Equal(t, 7, ratings[0].Score)
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}

func TestHandleReactionAdded_IgnoresNonRatingEmoji(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("thumbsup", originalTS))

	// Assert
	assert.Empty(t, repo.TrackRatings[testTrackID])
	assert.Zero(t, api.messageCalls)
}

func TestHandleReactionAdded_ZeroEmojiScoresNothing(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("zero", originalTS))

	// Assert
	assert.Empty(t, repo.TrackRatings[testTrackID])
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}

func TestHandleReactionAdded_NotOriginalMessage(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("seven", "1699999999.000001"))

	// Assert
	assert.Empty(t, repo.TrackRatings[testTrackID])
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, fmt.Sprintf(
		"Reactions can only be added to the original song message."+
			" Please react to the original message here: <%s|View original message>.",
		testPermalink), api.ephemerals[0])
}

func TestHandleReactionAdded_AlreadyRated(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)
	repo.TrackRatings[testTrackID] = []domain.Rating{{TrackID: testTrackID, UserID: raterID, Score: 7}}

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("nine", originalTS))

	// Assert
	require.Len(t, repo.TrackRatings[testTrackID], 1)
	assert.Equal(t, 7, repo.TrackRatings[testTrackID][0].Score)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "You have already reacted to this song. Please remove your previous reaction first.", api.ephemerals[0])
}

func TestHandleReactionAdded_UnknownTrack(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("seven", originalTS))

	// Assert
	require.Len(t, api.posts, 1)
	assert.Equal(t, "This song is not in the database. Please add it first.", api.posts[0])
}

func TestHandleReactionAdded_NoMessageLink(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	track := seedStoredTrack(repo)
	track.MessageLink = ""

	// Execute
	h.HandleReactionAdded(context.Background(), addedEvent("seven", originalTS))

	// Assert
	assert.Empty(t, repo.TrackRatings[testTrackID])
	require.Len(t, api.posts, 1)
	assert.Equal(t, "No original message link found for this song. Please add the song first.", api.posts[0])
}

func TestHandleReactionRemoved_RemovesRating(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)
	repo.TrackRatings[testTrackID] = []domain.Rating{{TrackID: testTrackID, UserID: raterID, Score: 7}}

	// Execute
	h.HandleReactionRemoved(context.Background(), removedEvent("seven", originalTS))

	// Assert
	assert.Empty(t, repo.TrackRatings[testTrackID])
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}

func TestHandleReactionRemoved_NeverRated(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleReactionRemoved(context.Background(), removedEvent("seven", originalTS))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "You have not reacted to this song yet.", api.ephemerals[0])
}

func TestHandleReactionRemoved_MismatchedEmojiKeepsRating(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)
	repo.TrackRatings[testTrackID] = []domain.Rating{{TrackID: testTrackID, UserID: raterID, Score: 7}}

	// Execute
	h.HandleReactionRemoved(context.Background(), removedEvent("nine", originalTS))

	// Assert
	require.Len(t, repo.TrackRatings[testTrackID], 1)
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}

func TestHandleReactionRemoved_NotOriginalMessage(t *testing.T) {
	// Setup
	api := newStubAPI()
	api.messageText = testTrackLink
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)
	repo.TrackRatings[testTrackID] = []domain.Rating{{TrackID: testTrackID, UserID: raterID, Score: 7}}

	// Execute
	h.HandleReactionRemoved(context.Background(), removedEvent("seven", "1699999999.000001"))

	// Assert
	require.Len(t, repo.TrackRatings[testTrackID], 1)
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, fmt.Sprintf(
		"Reactions can only be removed from the original song message."+
			" Please remove your reaction from the original message here: <%s|View original message>.",
		testPermalink), api.ephemerals[0])
}

func TestHandleCommand_Ping(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/ping", ""))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "Pong!", api.ephemerals[0])
}

func TestHandleCommand_Leaderboard(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.Entries = []domain.LeaderboardEntry{
		{TrackID: "t1", Title: "Bohemian Rhapsody", Artists: "Queen", Average: 8.0, Count: 2},
		{TrackID: "t2", Title: "Take On Me", Artists: "a-ha", Average: 6.0, Count: 1},
	}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", ""))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "*🎵 Top Songs Leaderboard*")
	assert.Contains(t, api.ephemerals[0], "Bohemian Rhapsody - Queen")
	assert.Empty(t, api.posts)
}

func TestHandleCommand_LeaderboardPublicWithCount(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.Entries = []domain.LeaderboardEntry{
		{TrackID: "t1", Title: "Bohemian Rhapsody", Artists: "Queen", Average: 8.0, Count: 2},
		{TrackID: "t2", Title: "Take On Me", Artists: "a-ha", Average: 6.0, Count: 1},
	}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", "--public --count 1"))

	// Assert
	assert.Empty(t, api.ephemerals)
	require.Len(t, api.posts, 1)
	assert.Contains(t, api.posts[0], "Bohemian Rhapsody - Queen")
	assert.NotContains(t, api.posts[0], "Take On Me")
}

func TestHandleCommand_LeaderboardInvalidCount(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", "--count nope"))
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", "--count -3"))

	// Assert
	require.Len(t, api.ephemerals, 2)
	assert.Equal(t, "Invalid count specified. Please provide a positive integer.", api.ephemerals[0])
	assert.Equal(t, "Invalid count specified. Please provide a positive integer.", api.ephemerals[1])
}

func TestHandleCommand_LeaderboardEmpty(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", ""))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "No songs found in the database.", api.ephemerals[0])
}

func TestHandleCommand_UnknownFlagRejected(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/leaderboard", "--bogus"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "Unknown arguments: --bogus.", api.ephemerals[0])
}

func TestHandleCommand_Unrated(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.Tracks["t1"] = &domain.Track{
		ID:          "t1",
		Title:       "Take On Me",
		SubmittedBy: raterID,
		MessageLink: "https://x/p1",
		Artists:     []domain.Artist{{Name: "a-ha"}},
	}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/unrated", ""))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "*🎵 Unrated Songs for alice 🎵*")
	assert.Contains(t, api.ephemerals[0], "Take On Me")
}

func TestHandleCommand_UnratedForOtherUser(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/unrated", "--user <@U0BOB>"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "No unrated songs found for bob.", api.ephemerals[0])
}

func TestHandleCommand_UnratedInvalidMention(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/unrated", "--user bob"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "Invalid user mention format. Please use @username format.", api.ephemerals[0])
}

func TestHandleCommand_UnratedUnknownUser(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/unrated", "--user <@U0GHOST>"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "User `U0GHOST` does not exist or is not accessible.", api.ephemerals[0])
}

func TestHandleCommand_StatsRequiresExactlyOneTarget(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", ""))
	h.HandleCommand(context.Background(), slashCommand("/stats", "--user <@U0BOB> --song radio"))

	// Assert
	require.Len(t, api.ephemerals, 2)
	assert.Equal(t, "Please specify exactly one of the following: --user, --song, or --artist.", api.ephemerals[0])
	assert.Equal(t, "Please specify exactly one of the following: --user, --song, or --artist.", api.ephemerals[1])
}

func TestHandleCommand_StatsSong(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)
	repo.TrackRatings[testTrackID] = []domain.Rating{
		{TrackID: testTrackID, UserID: raterID, Score: 9},
	}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--song "+testTrackLink))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "*Song Details:*")
	assert.Contains(t, api.ephemerals[0], "🎵 Bohemian Rhapsody by Queen")
	assert.Contains(t, api.ephemerals[0], "👤 alice")
	assert.Contains(t, api.ephemerals[0], "⭐ Average Rating: 9.0 (1 reactions)")
	assert.Contains(t, api.ephemerals[0], "bob: 9️⃣")
}

func TestHandleCommand_StatsSongByTitle(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	seedStoredTrack(repo)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", `--song "Bohemian Rhapsody"`))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "🎵 Bohemian Rhapsody by Queen")
}

func TestHandleCommand_StatsSongAmbiguous(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.Tracks["t1"] = &domain.Track{ID: "t1", Title: "Radio Ga Ga", Album: "The Works"}
	repo.Tracks["t2"] = &domain.Track{ID: "t2", Title: "Radioactive", Album: "Night Visions"}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--song radio"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "Multiple songs found matching 'radio'.")
	assert.Contains(t, api.ephemerals[0], "*Radio Ga Ga* (Album: The Works, ID: `t1`)")
}

func TestHandleCommand_StatsSongNotFound(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--song nosuch"))
	h.HandleCommand(context.Background(), slashCommand("/stats", "--song 0000000000000000000000"))

	// Assert
	require.Len(t, api.ephemerals, 2)
	assert.Equal(t, "No songs found with the name 'nosuch'.", api.ephemerals[0])
	assert.Equal(t, "No song found with the ID '0000000000000000000000'.", api.ephemerals[1])
}

func TestHandleCommand_StatsSongBareFlag(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--song"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "Please specify a song using the --song argument.", api.ephemerals[0])
}

func TestHandleCommand_StatsUser(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.Stats[raterID] = &domain.UserStats{UserID: raterID, Submitted: 3, RatingsGiven: 2}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--user <@U0BOB> --public"))

	// Assert
	assert.Empty(t, api.ephemerals)
	require.Len(t, api.posts, 1)
	assert.Contains(t, api.posts[0], "*📊 Statistics for bob*")
	assert.Contains(t, api.posts[0], "• Songs submitted: 3")
}

func TestHandleCommand_StatsArtist(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, repo, _ := newTestHandlers(api)
	repo.ArtistInfo["Queen"] = &domain.ArtistStats{Name: "Queen", Tracks: 2, Average: 7.3}

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--artist queen"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Contains(t, api.ephemerals[0], "*🎤 Statistics for Queen*")
}

func TestHandleCommand_StatsArtistNotFound(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/stats", "--artist Nobody"))

	// Assert
	require.Len(t, api.ephemerals, 1)
	assert.Equal(t, "No artist found with the name 'Nobody'.", api.ephemerals[0])
}

func TestHandleCommand_UnknownCommand(t *testing.T) {
	// Setup
	api := newStubAPI()
	h, _, _ := newTestHandlers(api)

	// Execute
	h.HandleCommand(context.Background(), slashCommand("/bogus", ""))

	// Assert
	assert.Empty(t, api.ephemerals)
	assert.Empty(t, api.posts)
}
