package hub

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/domain"
	"github.com/devaloi/pairline/internal/testutil"
)

func newHub() *Hub {
	return New(zerolog.Nop(), nil)
}

func TestHubJoinNotifiesOthers(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	bob := testutil.NewMockClient("bob")
	h.Join(alice, "r1", "alice")
	h.Join(bob, "r1", "bob")

	got := alice.Notifications()
	if len(got) != 1 {
		t.Fatalf("expected 1 notification for alice, got %d", len(got))
	}
	if got[0] != domain.UserJoined("r1", "bob") {
		t.Errorf("unexpected notification: %+v", got[0])
	}
	if len(bob.Notifications()) != 0 {
		t.Error("joining client should not be notified of its own join")
	}
	if h.GroupSize("r1") != 2 {
		t.Errorf("expected group size 2, got %d", h.GroupSize("r1"))
	}
}

func TestHubJoinIgnoresCapacity(t *testing.T) {
	t.Parallel()
	h := newHub()

	for _, name := range []string{"a", "b", "c", "d"} {
		h.Join(testutil.NewMockClient(name), "r1", name)
	}
	if h.GroupSize("r1") != 4 {
		t.Errorf("expected group size 4, got %d", h.GroupSize("r1"))
	}
}

func TestHubMessageReachesSender(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	bob := testutil.NewMockClient("bob")
	h.Join(alice, "r1", "alice")
	h.Join(bob, "r1", "bob")

	h.Message(alice, "r1", "alice", "hello")

	want := domain.Chat("r1", "alice", "hello")
	for _, c := range []*testutil.MockClient{alice, bob} {
		got := c.Notifications()
		if len(got) == 0 || got[len(got)-1] != want {
			t.Errorf("client %s did not receive message, got %+v", c.Name, got)
		}
	}
}

func TestHubMessageUnknownRoomIsNoop(t *testing.T) {
	t.Parallel()
	h := newHub()
	alice := testutil.NewMockClient("alice")

	h.Message(alice, "ghost", "alice", "hello")

	if len(alice.GetMessages()) != 0 {
		t.Error("expected no delivery for unknown room")
	}
}

func TestHubLeave(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	bob := testutil.NewMockClient("bob")
	h.Join(alice, "r1", "alice")
	h.Join(bob, "r1", "bob")

	h.Leave(alice, "r1", "alice")

	got := bob.Notifications()
	if len(got) != 1 || got[0] != domain.UserLeft("r1", "alice") {
		t.Errorf("expected user_left for alice, got %+v", got)
	}
	if h.GroupSize("r1") != 1 {
		t.Errorf("expected group size 1, got %d", h.GroupSize("r1"))
	}

	// Messages after leaving no longer reach the departed connection.
	before := len(alice.GetMessages())
	h.Message(bob, "r1", "bob", "still here?")
	if len(alice.GetMessages()) != before {
		t.Error("alice received a message after leaving")
	}
}

func TestHubLeaveNonMemberStillEmits(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	stranger := testutil.NewMockClient("stranger")
	h.Join(alice, "r1", "alice")

	h.Leave(stranger, "r1", "mallory")

	got := alice.Notifications()
	if len(got) != 1 || got[0] != domain.UserLeft("r1", "mallory") {
		t.Errorf("expected user_left for mallory, got %+v", got)
	}
	if h.GroupSize("r1") != 1 {
		t.Errorf("expected group size 1, got %d", h.GroupSize("r1"))
	}
}

func TestHubPrunesEmptyGroups(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	h.Join(alice, "temp", "alice")
	if len(h.Groups()) != 1 {
		t.Fatal("expected 1 group")
	}

	h.Leave(alice, "temp", "alice")
	if len(h.Groups()) != 0 {
		t.Error("expected group to be pruned")
	}
}

func TestHubDisconnectNotifiesPeers(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	bob := testutil.NewMockClient("bob")
	carol := testutil.NewMockClient("carol")
	h.Join(alice, "r1", "alice")
	h.Join(alice, "r2", "alice-too")
	h.Join(bob, "r1", "bob")
	h.Join(carol, "r2", "carol")

	h.Disconnect(alice, map[string]string{"r1": "alice", "r2": "alice-too"})

	if got := bob.Notifications(); got[len(got)-1] != domain.UserLeft("r1", "alice") {
		t.Errorf("bob: expected user_left for alice, got %+v", got)
	}
	if got := carol.Notifications(); got[len(got)-1] != domain.UserLeft("r2", "alice-too") {
		t.Errorf("carol: expected user_left for alice-too, got %+v", got)
	}
	if h.GroupSize("r1") != 1 || h.GroupSize("r2") != 1 {
		t.Error("expected alice pruned from both groups")
	}
}

func TestHubDisconnectAfterLeaveIsSilent(t *testing.T) {
	t.Parallel()
	h := newHub()

	alice := testutil.NewMockClient("alice")
	bob := testutil.NewMockClient("bob")
	h.Join(alice, "r1", "alice")
	h.Join(bob, "r1", "bob")
	h.Leave(alice, "r1", "alice")
	before := len(bob.GetMessages())

	h.Disconnect(alice, map[string]string{"r1": "alice"})

	if len(bob.GetMessages()) != before {
		t.Error("expected no second user_left after explicit leave")
	}
}

func TestHubGroupsSorted(t *testing.T) {
	t.Parallel()
	h := newHub()
	h.Join(testutil.NewMockClient("a"), "zeta", "a")
	h.Join(testutil.NewMockClient("b"), "alpha", "b")
	h.Join(testutil.NewMockClient("c"), "alpha", "c")

	groups := h.Groups()
	want := []domain.Group{{Room: "alpha", Connections: 2}, {Room: "zeta", Connections: 1}}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d: got %+v, want %+v", i, groups[i], want[i])
		}
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	t.Parallel()
	h := newHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := testutil.NewMockClient("c")
			h.Join(c, "busy", "user")
			h.Message(c, "busy", "user", "hi")
			if i%2 == 0 {
				h.Leave(c, "busy", "user")
			}
		}(i)
	}
	wg.Wait()

	if h.GroupSize("busy") != 25 {
		t.Errorf("expected 25 connections left, got %d", h.GroupSize("busy"))
	}
}
