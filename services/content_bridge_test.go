package services

import (
	"sync"
	"testing"
)

func TestSlotKey(t *testing.T) {
	cases := []struct {
		name       string
		pageKey    string
		sectionKey string
		want       string
	}{
		{"simple", "home", "hero_title", "home:hero_title"},
		{"empty section", "about", "", "about:"},
		{"empty page", "", "intro", ":intro"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlotKey(tc.pageKey, tc.sectionKey); got != tc.want {
				t.Errorf("SlotKey(%q, %q) = %q, want %q", tc.pageKey, tc.sectionKey, got, tc.want)
			}
		})
	}
}

func TestMemoryBridgeDeliversToAllSubscribers(t *testing.T) {
	b := NewMemoryBridge()
	key := SlotKey("home", "hero_title")

	var mu sync.Mutex
	var first, second []string
	b.Subscribe(key, func(v string) {
		mu.Lock()
		first = append(first, v)
		mu.Unlock()
	})
	b.Subscribe(key, func(v string) {
		mu.Lock()
		second = append(second, v)
		mu.Unlock()
	})

	b.Send(key, "Welcome")
	b.Send(key, "Welcome home")

	mu.Lock()
	defer mu.Unlock()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("deliveries = %d and %d, want 2 and 2", len(first), len(second))
	}
	if first[1] != "Welcome home" || second[1] != "Welcome home" {
		t.Errorf("last delivery = %q and %q, want %q", first[1], second[1], "Welcome home")
	}
}

func TestMemoryBridgeKeyIsolation(t *testing.T) {
	b := NewMemoryBridge()

	var got []string
	b.Subscribe(SlotKey("home", "hero_title"), func(v string) {
		got = append(got, v)
	})

	b.Send(SlotKey("about", "hero_title"), "wrong page")
	b.Send(SlotKey("home", "intro"), "wrong section")
	b.Send(SlotKey("home", "hero_title"), "right slot")

	if len(got) != 1 || got[0] != "right slot" {
		t.Errorf("deliveries = %v, want exactly [right slot]", got)
	}
}

func TestMemoryBridgeUnsubscribe(t *testing.T) {
	b := NewMemoryBridge()
	key := SlotKey("home", "hero_title")

	var kept, dropped int
	b.Subscribe(key, func(string) { kept++ })
	unsubscribe := b.Subscribe(key, func(string) { dropped++ })

	b.Send(key, "one")
	unsubscribe()
	b.Send(key, "two")

	// Unsubscribing twice must be harmless
	unsubscribe()
	b.Send(key, "three")

	if kept != 3 {
		t.Errorf("remaining subscriber saw %d sends, want 3", kept)
	}
	if dropped != 1 {
		t.Errorf("unsubscribed handler saw %d sends, want 1", dropped)
	}
}

func TestMemoryBridgeSendWithoutSubscribers(t *testing.T) {
	b := NewMemoryBridge()
	// Must not panic or block
	b.Send(SlotKey("home", "hero_title"), "nobody listening")
}

func TestSetBridgeSwapsAndRestores(t *testing.T) {
	replacement := NewMemoryBridge()
	prev := SetBridge(replacement)
	defer SetBridge(prev)

	if GetBridge() != Bridge(replacement) {
		t.Fatal("GetBridge() did not return the replacement bridge")
	}

	// nil falls back to a fresh in-process bridge instead of leaving the
	// shared instance unusable
	SetBridge(nil)
	if GetBridge() == nil {
		t.Fatal("GetBridge() returned nil after SetBridge(nil)")
	}
}
