package world

import (
	"testing"

	"instinct/internal/domain/decision"
)

func TestAgentsInRangeExcludesSelfAndPlayers(t *testing.T) {
	w := New()
	self := w.Spawn(AgentSpec{ID: "self"})
	w.Spawn(AgentSpec{ID: "near", Pos: decision.Vector{X: 10}})
	w.Spawn(AgentSpec{ID: "player", Pos: decision.Vector{X: 5}, Player: true})
	w.Spawn(AgentSpec{ID: "far", Pos: decision.Vector{X: 999}})

	got := w.AgentsInRange(self, 100, false)
	if len(got) != 1 || got[0].ActorID() != "near" {
		t.Fatalf("expected only the near non-player agent, got %v", got)
	}
}

func TestPlayerPositions(t *testing.T) {
	w := New()
	w.Spawn(AgentSpec{ID: "npc"})
	w.Spawn(AgentSpec{ID: "p1", Pos: decision.Vector{X: 7}, Player: true})

	got := w.PlayerPositions()
	if len(got) != 1 || got[0] != (decision.Vector{X: 7}) {
		t.Fatalf("expected single player position, got %v", got)
	}
}

func TestTagListenersFireOnChange(t *testing.T) {
	w := New()
	w.Spawn(AgentSpec{ID: "a"})

	fired := 0
	w.OnTagsChanged("a", func() { fired++ })

	w.AddTag("a", "state.cutscene")
	w.RemoveTag("a", "state.cutscene")

	if fired != 2 {
		t.Fatalf("expected 2 tag notifications, got %d", fired)
	}

	a, _ := w.Agent("a")
	if a.HasTag("state.cutscene") {
		t.Fatalf("tag should be removed")
	}
}

func TestPerceptionListenersFireOnSpawnAndRemove(t *testing.T) {
	w := New()
	fired := 0
	w.OnPerceptionChanged(func() { fired++ })

	w.Spawn(AgentSpec{ID: "a"})
	w.Remove("a")

	if fired != 2 {
		t.Fatalf("expected 2 perception notifications, got %d", fired)
	}
}
