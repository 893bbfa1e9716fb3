package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeLineup(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want map[Position][]string // only positions that should be non-empty
	}{
		{
			name: "nil input yields empty arrays for every position",
			raw:  nil,
			want: map[Position][]string{},
		},
		{
			name: "array per position",
			raw: map[string]any{
				"mens_doubles_1": []string{"p1", "p2"},
			},
			want: map[Position][]string{
				PositionMensDoubles1: {"p1", "p2"},
			},
		},
		{
			name: "legacy single reference",
			raw: map[string]any{
				"mens_singles_1": "p1",
			},
			want: map[Position][]string{
				PositionMensSingles1: {"p1"},
			},
		},
		{
			name: "legacy null reference",
			raw: map[string]any{
				"mens_singles_1": nil,
			},
			want: map[Position][]string{},
		},
		{
			name: "interface slice values",
			raw: map[string]any{
				"womens_doubles_1": []any{"p3", "p4"},
			},
			want: map[Position][]string{
				PositionWomensDoubles1: {"p3", "p4"},
			},
		},
		{
			name: "unknown keys are dropped",
			raw: map[string]any{
				"under_12_singles": []string{"p9"},
				"mens_singles_2":   []string{"p5"},
			},
			want: map[Position][]string{
				PositionMensSingles2: {"p5"},
			},
		},
		{
			name: "canonical type passes through",
			raw: Lineup{
				PositionMixedDoubles1: {"p6", "p7"},
			},
			want: map[Position][]string{
				PositionMixedDoubles1: {"p6", "p7"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLineup(tt.raw)

			if len(got) != len(Positions()) {
				t.Fatalf("NormalizeLineup() has %d keys, want total coverage of %d positions", len(got), len(Positions()))
			}
			for _, pos := range Positions() {
				ids, ok := got[pos]
				if !ok {
					t.Fatalf("NormalizeLineup() missing position %s", pos)
				}
				want := tt.want[pos]
				if want == nil {
					want = []string{}
				}
				if !reflect.DeepEqual(ids, want) {
					t.Errorf("NormalizeLineup()[%s] = %v, want %v", pos, ids, want)
				}
			}
		})
	}
}

func TestNormalizeLineupNamedMapType(t *testing.T) {
	// bson decodes lineups to named map types; the reflection fallback must
	// handle them without a prior conversion.
	type docMap map[string]interface{}
	type refList []interface{}

	got := NormalizeLineup(docMap{
		"mens_doubles_1": refList{"p1", "p2"},
	})

	want := []string{"p1", "p2"}
	if !reflect.DeepEqual(got[PositionMensDoubles1], want) {
		t.Errorf("NormalizeLineup()[mens_doubles_1] = %v, want %v", got[PositionMensDoubles1], want)
	}
}
