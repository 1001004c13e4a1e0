package domain

import (
	"reflect"
	"testing"
	"time"
)

func pid(v int64) *int64 { return &v }

func Test_ToTree(t *testing.T) {
	in := []Comment{
		{ID: 4, ParentID: pid(1)},
		{ID: 5, ParentID: pid(2)},
		{ID: 6, ParentID: pid(3)},
		{ID: 1},
		{ID: 2},
		{ID: 3},
		{ID: 7, ParentID: pid(4)},
		{ID: 8, ParentID: pid(5)},
		{ID: 9, ParentID: pid(6)},
		{ID: 10},
		{ID: 11, ParentID: pid(1)},
		{ID: 12, ParentID: pid(2)},
		{ID: 13, ParentID: pid(3)},
		{ID: 14, ParentID: pid(7)},
	}

	want := []Comment{
		{ID: 1, Replies: []Comment{{ID: 4, ParentID: pid(1),
			Replies: []Comment{{ID: 7, ParentID: pid(4), Replies: []Comment{{ID: 14, ParentID: pid(7)}}}}}, {ID: 11, ParentID: pid(1)}}},
		{ID: 2, Replies: []Comment{{ID: 5, ParentID: pid(2), Replies: []Comment{{ID: 8, ParentID: pid(5)}}}, {ID: 12, ParentID: pid(2)}}},
		{ID: 3, Replies: []Comment{{ID: 6, ParentID: pid(3), Replies: []Comment{{ID: 9, ParentID: pid(6)}}}, {ID: 13, ParentID: pid(3)}}},
		{ID: 10},
	}

	got := ToTree(in)

	if len(got) != len(want) {
		t.Fatalf("ToTree() len = %d, want %d", len(got), len(want))
	}

	for i := range got {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("ToTree() = %v, want %v", got[i], want[i])
		}
	}
}

func Test_TopLevel(t *testing.T) {
	in := []Comment{
		{ID: 1},
		{ID: 2, ParentID: pid(1)},
		{ID: 3},
	}

	got := TopLevel(in)

	if len(got) != 2 {
		t.Fatalf("TopLevel() len = %d, want %d", len(got), 2)
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("TopLevel() = %v", got)
	}
}

func Test_Editable(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		age     time.Duration
		deleted bool
		want    bool
	}{
		{"29_minutes", 29 * time.Minute, false, true},
		{"exactly_30_minutes", 30 * time.Minute, false, true},
		{"31_minutes", 31 * time.Minute, false, false},
		{"deleted", time.Minute, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Comment{CreatedAt: now.Add(-tt.age), IsDeleted: tt.deleted}
			if got := c.Editable(now); got != tt.want {
				t.Errorf("Editable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_MaskIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.168.1.10", "192.168.***.***"},
		{"2001:db8::1", "2001:****"},
		{"", ""},
		{"localhost", "***"},
	}

	for _, tt := range tests {
		if got := MaskIP(tt.in); got != tt.want {
			t.Errorf("MaskIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
