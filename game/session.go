package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oxjadex/catchme--catchyou/bus"
	"github.com/oxjadex/catchme--catchyou/metrics"
	"github.com/rs/zerolog/log"
)

// Session is the single source of truth of a room: its roster and round state.
// Exactly one process owns the session of a room; gateways on every worker send
// it commands and relay the events it emits.
//
// Every operation holds the session lock for its whole duration, including the
// emission of its events, so concurrent joins, leaves and guesses are applied one
// at a time and the events of one transition are published in order.
type Session struct {
	locker   sync.Mutex
	room     string
	fabric   bus.Fabric
	fanout   *Fanout
	roster   *Roster
	state    State
	keywords KeywordSource
	recorder AuditRecorder
}

func NewSession(room string, fabric bus.Fabric, keywords KeywordSource, recorder AuditRecorder, maxPlayers int) *Session {
	if maxPlayers <= 0 {
		maxPlayers = MaxPlayers
	}
	return &Session{
		room:     room,
		fabric:   fabric,
		fanout:   NewFanout(fabric, room),
		roster:   NewRoster(maxPlayers),
		keywords: keywords,
		recorder: recorder,
	}
}

// Serve applies the commands published on the room's command topic until ctx is done.
// started is closed once the subscription is active.
func (s *Session) Serve(ctx context.Context, started chan struct{}) error {
	sub, err := s.fabric.Subscribe(ctx, CommandsTopic(s.room))
	if err != nil {
		return fmt.Errorf("subscribing to room commands: %w", err)
	}
	defer sub.Close()

	close(started)
	log.Info().Str("room", s.room).Msg("session serving room commands")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			if err := s.Apply(ctx, msg); err != nil {
				log.Debug().Str("room", s.room).Str("command", msg.Event).Str("conn", msg.Target).Err(err).Msg("command not applied")
			}
		}
	}
}

// Apply dispatches one command received from a gateway.
func (s *Session) Apply(ctx context.Context, cmd bus.Message) error {
	switch cmd.Event {
	case CommandJoin:
		return s.Join(ctx, cmd.Target)
	case CommandLeave:
		s.Leave(ctx, cmd.Target)
		return nil
	case CommandChat:
		msg, err := ParseChatMessage(cmd.Payload)
		if err != nil {
			return err
		}
		_, err = s.Guess(ctx, cmd.Target, msg)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Event)
	}
}

// Join adds a connection to the roster. A connection rejected because the room is
// full is told so directly and nothing else changes.
func (s *Session) Join(ctx context.Context, connID string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	player := Player{
		ID:       connID,
		Username: fmt.Sprintf("Player %d", s.roster.Size()+1),
	}

	if err := s.roster.Join(player); err != nil {
		if errors.Is(err, ErrRoomFull) {
			log.Info().Str("room", s.room).Str("conn", connID).Msg("room full, rejecting player")
			metrics.RejectedJoins.Inc()
			s.emit(s.fanout.EmitTo(ctx, EventGameFull, nil, connID))
		}
		return err
	}

	log.Info().Str("room", s.room).Str("conn", connID).Str("username", player.Username).Int("players", s.roster.Size()).Msg("player joined")
	metrics.Players.Set(float64(s.roster.Size()))
	s.recorder.RecordEvent(AuditPlayerJoined)

	if s.roster.Size() == 1 {
		s.state.DrawerIndex = 0
		s.startNewRound(ctx)
	}

	s.emit(s.fanout.EmitAll(ctx, EventUpdatePlayers, s.snapshot()))
	return nil
}

// Leave removes a connection. Unknown or already removed connections are ignored.
func (s *Session) Leave(ctx context.Context, connID string) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if !s.roster.Leave(connID) {
		return
	}
	s.state.DrawerIndex = ClampDrawer(s.state.DrawerIndex, s.roster.Size())

	log.Info().Str("room", s.room).Str("conn", connID).Int("players", s.roster.Size()).Msg("player left")
	metrics.Players.Set(float64(s.roster.Size()))
	s.recorder.RecordEvent(AuditPlayerLeft)

	if s.roster.Size() == 0 {
		// the next joiner starts a fresh round
		return
	}
	s.emit(s.fanout.EmitAll(ctx, EventUpdatePlayers, s.snapshot()))
}

// Guess evaluates a chat message against the current keyword and reports whether
// it won the round. The message is relayed and recorded whatever the outcome.
func (s *Session) Guess(ctx context.Context, connID string, msg ChatMessage) (bool, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.roster.IndexOf(connID) < 0 {
		return false, ErrNotInRoom
	}
	metrics.Guesses.Inc()

	won := s.isWinningGuess(connID, msg.Text)
	if won {
		keyword := s.state.Keyword
		s.state.Winner = msg.Username
		s.state.Resolved = true

		log.Info().Str("room", s.room).Str("conn", connID).Str("winner", msg.Username).Str("keyword", keyword).Msg("round won")
		metrics.RoundsWon.Inc()
		s.recorder.RecordEvent(AuditRoundWon)
		s.emit(s.fanout.EmitAll(ctx, EventGameWon, GameWon{Winner: msg.Username, Keyword: keyword}))

		s.state.DrawerIndex = NextDrawer(s.state.DrawerIndex, s.roster.Size())
		s.startNewRound(ctx)
	}

	s.emit(s.fanout.EmitAll(ctx, EventChatMessage, msg))
	s.emit(s.fanout.EmitAll(ctx, EventUpdatePlayers, s.snapshot()))
	s.recorder.RecordChat(msg.Username, msg.Text)

	return won, nil
}

func (s *Session) Snapshot() Snapshot {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.snapshot()
}

func (s *Session) State() State {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.state
}

func (s *Session) Players() []Player {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.roster.Players()
}

func (s *Session) startNewRound(ctx context.Context) {
	drawer, ok := s.roster.At(s.state.DrawerIndex)
	if !ok {
		log.Warn().Str("room", s.room).Int("drawer_index", s.state.DrawerIndex).Msg("refusing to start a round without a drawer")
		return
	}

	s.state.Keyword = s.keywords.Next()
	s.state.HasKeyword = true
	s.state.Winner = ""
	s.state.Resolved = false

	log.Info().Str("room", s.room).Str("drawer", drawer.ID).Str("keyword", s.state.Keyword).Msg("new round")
	metrics.RoundsStarted.Inc()
	s.recorder.RecordEvent(AuditRoundStarted)
	s.emit(s.fanout.EmitAll(ctx, EventNewRound, NewRound{Keyword: s.state.Keyword, CurrentDrawer: drawer.ID}))
}

func (s *Session) isWinningGuess(connID, text string) bool {
	if !s.state.HasKeyword || s.state.Resolved {
		return false
	}
	drawer, ok := s.roster.At(s.state.DrawerIndex)
	if !ok || drawer.ID == connID {
		return false
	}
	return normalize(text) == normalize(s.state.Keyword)
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Players: s.roster.Players(),
		Keyword: s.state.Keyword,
	}
	if drawer, ok := s.roster.At(s.state.DrawerIndex); ok {
		snap.CurrentDrawer = drawer.ID
	}
	return snap
}

func (s *Session) emit(err error) {
	if err != nil {
		log.Error().Str("room", s.room).Err(err).Msg("failed to publish room event")
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseChatMessage decodes a chat payload, rejecting payloads without a username or text.
func ParseChatMessage(data []byte) (ChatMessage, error) {
	var raw struct {
		Username *string `json:"username"`
		Text     *string `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ChatMessage{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if raw.Username == nil || raw.Text == nil {
		return ChatMessage{}, ErrMalformedMessage
	}
	return ChatMessage{Username: *raw.Username, Text: *raw.Text}, nil
}
