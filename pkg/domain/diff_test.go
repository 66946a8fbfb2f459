package domain

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  GeneState
		new  GeneState
		want []GeneChange
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  GeneState{"A": true, "B": false},
			want: []GeneChange{{Node: "A", From: false, To: true}},
		},
		{
			name: "No Changes",
			old:  GeneState{"A": true, "B": false},
			new:  GeneState{"A": true, "B": false},
			want: nil,
		},
		{
			name: "Flip Both Ways",
			old:  GeneState{"A": true, "B": false, "C": true},
			new:  GeneState{"A": false, "B": true, "C": true},
			want: []GeneChange{
				{Node: "A", From: true, To: false},
				{Node: "B", From: false, To: true},
			},
		},
		{
			name: "Node Dropped While On",
			old:  GeneState{"A": true, "B": true},
			new:  GeneState{"A": true},
			want: []GeneChange{{Node: "B", From: true, To: false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeneState_CloneIsIndependent(t *testing.T) {
	orig := GeneState{"A": true}
	clone := orig.Clone()
	clone["A"] = false
	clone["B"] = true

	if !orig["A"] {
		t.Errorf("mutating the clone changed the original")
	}
	if _, ok := orig["B"]; ok {
		t.Errorf("key added to clone leaked into original")
	}
	if GeneState(nil).Clone() != nil {
		t.Errorf("Clone of nil should be nil")
	}
}

func TestGeneState_Active(t *testing.T) {
	got := GeneState{"p53": true, "ERK": false, "AKT": true}.Active()
	want := []string{"AKT", "p53"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
}
