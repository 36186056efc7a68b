package genlog

import (
	"strings"
	"testing"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

func TestGenerateDeterministic(t *testing.T) {
	render := func() string {
		var sb strings.Builder
		if err := Generate(Options{Seed: 42}).Save(&sb); err != nil {
			t.Fatal(err)
		}
		return sb.String()
	}
	if render() != render() {
		t.Fatal("same seed produced different logs")
	}

	var other strings.Builder
	if err := Generate(Options{Seed: 43}).Save(&other); err != nil {
		t.Fatal(err)
	}
	if render() == other.String() {
		t.Fatal("different seeds produced identical logs")
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	log := Generate(Options{GameName: "rt", Seed: 7, Players: 3, Turns: 5})

	var sb strings.Builder
	if err := log.Save(&sb); err != nil {
		t.Fatal(err)
	}
	loaded, err := soclog.Load(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries) != len(log.Entries) {
		t.Fatalf("entries = %d after round trip, want %d", len(loaded.Entries), len(log.Entries))
	}
	if loaded.GameName != "rt" || loaded.IsAtClient {
		t.Fatalf("header mismatch: %+v", loaded)
	}
}

func TestGenerateExtractsWithoutUnknowns(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		log := Generate(Options{Seed: seed, Players: 4, Turns: 10})
		x, err := extract.New(log, false)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		al := x.Extract()

		turns := 0
		for _, a := range al.Actions {
			if a.Type == extract.ActUnknown {
				t.Fatalf("seed %d: unknown span at index %d: %v", seed, a.StartIndex, a)
			}
			if a.Type == extract.ActTurnBegins {
				turns++
			}
		}
		// two placement rounds, ten ordinary turns, one winning turn
		if want := 2*4 + 10 + 1; turns != want {
			t.Fatalf("seed %d: turn actions = %d, want %d", seed, turns, want)
		}

		last := al.Actions[len(al.Actions)-1]
		if last.Type != extract.ActGameOver {
			t.Fatalf("seed %d: last action = %v, want GAME_OVER", seed, last.Type)
		}
		if wantWinner := 10 % 4; last.Param1 != wantWinner {
			t.Fatalf("seed %d: winner = %d, want %d", seed, last.Param1, wantWinner)
		}
	}
}
