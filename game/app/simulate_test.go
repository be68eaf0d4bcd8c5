package app

import (
	"bytes"
	"context"
	"testing"

	"judgement/framework/game/engines/judgement"
)

func TestSimulateCompletesGames(t *testing.T) {
	for _, players := range []int{4, 5, 6} {
		results, err := Simulate(context.Background(), SimulateOptions{Players: players, Games: 1, Seed: 42})
		if err != nil {
			t.Fatalf("%d players: %v", players, err)
		}
		res := results[0]
		if want := len(judgement.BuildRoundSequence(players)); res.Rounds != want {
			t.Errorf("%d players: played %d rounds, want %d", players, res.Rounds, want)
		}
		if len(res.Rankings) != players {
			t.Errorf("%d players: %d rankings", players, len(res.Rankings))
		}
		for i := 1; i < len(res.Rankings); i++ {
			if res.Rankings[i-1].TotalScore < res.Rankings[i].TotalScore {
				t.Errorf("%d players: rankings not sorted: %+v", players, res.Rankings)
			}
		}
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	opts := SimulateOptions{Players: 4, Games: 2, Seed: 9}
	a, err := Simulate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		for j := range a[i].Rankings {
			ra, rb := a[i].Rankings[j], b[i].Rankings[j]
			if ra.PlayerName != rb.PlayerName || ra.TotalScore != rb.TotalScore {
				t.Fatalf("game %d differs: %+v vs %+v", i+1, a[i].Rankings, b[i].Rankings)
			}
		}
	}
}

func TestSimulateRejectsBadOptions(t *testing.T) {
	tests := []SimulateOptions{
		{Players: 3, Games: 1},
		{Players: 7, Games: 1},
		{Players: 4, Games: 0},
	}
	for _, opts := range tests {
		if _, err := Simulate(context.Background(), opts); err == nil {
			t.Errorf("%+v: expected an error", opts)
		}
	}
}

func TestRenderStandings(t *testing.T) {
	results, err := Simulate(context.Background(), SimulateOptions{Players: 4, Games: 1, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := RenderStandings(&buf, results); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Standings")) || !bytes.Contains(buf.Bytes(), []byte("Bot 1")) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
