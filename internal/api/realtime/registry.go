package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/springmeet/springmeet/internal/api/metrics"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/pkg/tokenx"
)

const sendTimeout = 5 * time.Second

var ErrUnauthorizedConn = errors.New("unauthorized connection")

// Envelope is the wire frame pushed to room members.
type Envelope struct {
	Type     string          `json:"type"`
	MeetupID string          `json:"meetup_id"`
	UserID   string          `json:"user_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Registry maintains per-meetup sets of live connections and fans messages
// out to them. It holds no persisted state: a restart simply drops all
// connections and clients reconnect.
//
// Fanout guarantees are deliberately weak. Publish is fire-and-forget with no
// delivery acknowledgment and no queuing for offline members; the persisted
// message history is the authority and broadcasts are a hint to re-fetch.
type Registry struct {
	Log   *slog.Logger
	Codec *tokenx.Codec
	Store store.Store

	mu    sync.Mutex
	rooms map[string]map[Conn]struct{}
}

func NewRegistry(log *slog.Logger, codec *tokenx.Codec, st store.Store) *Registry {
	return &Registry{
		Log:   log,
		Codec: codec,
		Store: st,
		rooms: make(map[string]map[Conn]struct{}),
	}
}

// Authorize validates a prospective connection before any upgrade happens.
// The token must verify as an access token and its subject must hold an
// active RSVP for the meetup. Returns the user id on success.
func (r *Registry) Authorize(ctx context.Context, token, meetupID string) (string, error) {
	claims, err := r.Codec.Verify(token, tokenx.TypeAccess)
	if err != nil {
		return "", ErrUnauthorizedConn
	}

	active, err := r.Store.Memberships().IsActiveMember(ctx, meetupID, claims.Subject)
	if err != nil {
		return "", err
	}
	if !active {
		return "", ErrUnauthorizedConn
	}

	return claims.Subject, nil
}

// Join adds an authorized connection to the meetup's room and sends it a
// one-time "connected" acknowledgment.
func (r *Registry) Join(ctx context.Context, meetupID, userID string, conn Conn) error {
	r.mu.Lock()
	room, ok := r.rooms[meetupID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[meetupID] = room
		metrics.RealtimeRooms.Inc()
	}
	room[conn] = struct{}{}
	r.mu.Unlock()

	metrics.RealtimeConnections.Inc()
	r.Log.Debug("realtime connection joined", slog.String("meetup_id", meetupID))

	ack, _ := json.Marshal(Envelope{Type: "connected", MeetupID: meetupID, UserID: userID})
	return conn.Send(ctx, ack)
}

// Leave removes a connection from its room. When the room empties, its entry
// is discarded so the map never accumulates dead meetups. Safe to call for
// connections that already left.
func (r *Registry) Leave(meetupID string, conn Conn) {
	r.mu.Lock()
	room, ok := r.rooms[meetupID]
	if ok {
		if _, member := room[conn]; member {
			delete(room, conn)
			metrics.RealtimeConnections.Dec()
		}
		if len(room) == 0 {
			delete(r.rooms, meetupID)
			metrics.RealtimeRooms.Dec()
		}
	}
	r.mu.Unlock()

	if ok {
		r.Log.Debug("realtime connection left", slog.String("meetup_id", meetupID))
	}
}

// Publish pushes a payload to every open connection in the meetup's room.
// Closed connections are skipped and send failures are logged, never
// propagated; a failed delivery costs that one client a message, not the
// whole fanout.
func (r *Registry) Publish(meetupID string, payload json.RawMessage) {
	data, err := json.Marshal(Envelope{Type: "meetup_message", MeetupID: meetupID, Data: payload})
	if err != nil {
		r.Log.Error("failed to encode room envelope", slog.Any("error", err))
		return
	}

	r.mu.Lock()
	conns := make([]Conn, 0, len(r.rooms[meetupID]))
	for conn := range r.rooms[meetupID] {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		if !conn.IsOpen() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := conn.Send(ctx, data); err != nil {
			r.Log.Debug("dropped room message for one connection",
				slog.String("meetup_id", meetupID),
				slog.Any("error", err),
			)
		}
		cancel()
	}

	metrics.RealtimeMessages.Inc()
}

// RoomSize reports the number of live connections for a meetup.
func (r *Registry) RoomSize(meetupID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[meetupID])
}
