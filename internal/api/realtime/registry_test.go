package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/internal/api/store/drivers/sqlite"
	"github.com/springmeet/springmeet/pkg/tokenx"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	open     bool
	received [][]byte
}

func newFakeConn() *fakeConn { return &fakeConn{open: true} }

func (c *fakeConn) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.received = append(c.received, buf)
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

func (c *fakeConn) messages() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, 0, len(c.received))
	for _, raw := range c.received {
		var env Envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			out = append(out, env)
		}
	}
	return out
}

func newTestRegistry(t *testing.T) (*Registry, store.Store, *tokenx.Codec) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	codec := tokenx.NewCodec([]byte("test-secret"))
	reg := NewRegistry(slog.Default(), codec, s)
	return reg, s, codec
}

func seedMember(t *testing.T, s store.Store, userID, meetupID, status string) {
	t.Helper()
	ctx := context.Background()

	u := domain.User{ID: userID, Email: userID + "@example.com", DisplayName: userID, PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Memberships().CreateMeetup(ctx, meetupID, "Evening soak", userID))
	require.NoError(t, s.Memberships().UpsertMember(ctx, meetupID, userID, status))
}

func TestAuthorize(t *testing.T) {
	reg, s, codec := newTestRegistry(t)
	ctx := context.Background()

	seedMember(t, s, "user-1", "meetup-1", "going")

	token, err := codec.IssueAccess("user-1", time.Minute)
	require.NoError(t, err)

	userID, err := reg.Authorize(ctx, token, "meetup-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)

	// Garbage token.
	_, err = reg.Authorize(ctx, "garbage", "meetup-1")
	require.ErrorIs(t, err, ErrUnauthorizedConn)

	// Valid token, but not a member of this meetup.
	_, err = reg.Authorize(ctx, token, "meetup-other")
	require.ErrorIs(t, err, ErrUnauthorizedConn)
}

func TestAuthorize_InactiveStatus(t *testing.T) {
	reg, s, codec := newTestRegistry(t)
	ctx := context.Background()

	seedMember(t, s, "user-1", "meetup-1", "left")

	token, err := codec.IssueAccess("user-1", time.Minute)
	require.NoError(t, err)

	_, err = reg.Authorize(ctx, token, "meetup-1")
	require.ErrorIs(t, err, ErrUnauthorizedConn)
}

func TestJoin_SendsConnectedAck(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	conn := newFakeConn()
	require.NoError(t, reg.Join(context.Background(), "meetup-1", "user-1", conn))

	msgs := conn.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "connected", msgs[0].Type)
	require.Equal(t, "meetup-1", msgs[0].MeetupID)
	require.Equal(t, "user-1", msgs[0].UserID)
}

func TestPublish_RoomIsolation(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	inRoom := newFakeConn()
	otherRoom := newFakeConn()
	require.NoError(t, reg.Join(ctx, "meetup-1", "user-1", inRoom))
	require.NoError(t, reg.Join(ctx, "meetup-2", "user-2", otherRoom))

	reg.Publish("meetup-1", json.RawMessage(`{"text":"hello"}`))

	msgs := inRoom.messages()
	require.Len(t, msgs, 2) // ack + message
	require.Equal(t, "meetup_message", msgs[1].Type)
	require.JSONEq(t, `{"text":"hello"}`, string(msgs[1].Data))

	// The other room only ever saw its ack.
	require.Len(t, otherRoom.messages(), 1)
}

func TestPublish_SkipsClosedConns(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	open := newFakeConn()
	closed := newFakeConn()
	require.NoError(t, reg.Join(ctx, "meetup-1", "user-1", open))
	require.NoError(t, reg.Join(ctx, "meetup-1", "user-2", closed))
	closed.close()

	reg.Publish("meetup-1", json.RawMessage(`{"text":"hi"}`))

	require.Len(t, open.messages(), 2)
	require.Len(t, closed.messages(), 1) // just the ack from before closing
}

func TestLeave_EmptyRoomCleanup(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	a := newFakeConn()
	b := newFakeConn()
	require.NoError(t, reg.Join(ctx, "meetup-1", "user-1", a))
	require.NoError(t, reg.Join(ctx, "meetup-1", "user-2", b))
	require.Equal(t, 2, reg.RoomSize("meetup-1"))

	reg.Leave("meetup-1", a)
	require.Equal(t, 1, reg.RoomSize("meetup-1"))

	reg.Leave("meetup-1", b)
	require.Equal(t, 0, reg.RoomSize("meetup-1"))

	// Leaving twice is harmless.
	reg.Leave("meetup-1", b)
	require.Equal(t, 0, reg.RoomSize("meetup-1"))

	// Publishing into a now-empty room is a no-op.
	reg.Publish("meetup-1", json.RawMessage(`{}`))
	require.Len(t, a.messages(), 1)
	require.Len(t, b.messages(), 1)
}
