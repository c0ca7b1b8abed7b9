package utils

import (
	"reflect"
	"testing"
)

func eqString(a, b string) bool { return a == b }

func TestBounded_PushUnique(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		push    string
		want    []string
	}{
		{"empty", nil, "Meeting", []string{"Meeting"}},
		{"new tag goes first", []string{"Slack", "Jira"}, "Meeting", []string{"Meeting", "Slack", "Jira"}},
		{"existing tag moves to front", []string{"Slack", "Jira", "Meeting"}, "Meeting", []string{"Meeting", "Slack", "Jira"}},
		{"oldest evicted", []string{"A", "B", "C"}, "D", []string{"D", "A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBounded(3, tt.initial)
			b.PushUnique(tt.push, eqString)
			if !reflect.DeepEqual(b.Items, tt.want) {
				t.Errorf("Items = %v, want %v", b.Items, tt.want)
			}
		})
	}
}

func TestBounded_PushCapsLength(t *testing.T) {
	b := NewBounded[int](50, nil)
	for i := 0; i < 60; i++ {
		b.Push(i)
	}
	if len(b.Items) != 50 {
		t.Fatalf("len = %d, want 50", len(b.Items))
	}
	if b.Items[0] != 59 || b.Items[49] != 10 {
		t.Errorf("Items[0] = %d, Items[49] = %d", b.Items[0], b.Items[49])
	}
}

func TestNewBounded_DoesNotAliasInput(t *testing.T) {
	in := []string{"A", "B"}
	b := NewBounded(3, in)
	b.Push("C")
	if in[0] != "A" {
		t.Errorf("input slice was modified: %v", in)
	}
}
