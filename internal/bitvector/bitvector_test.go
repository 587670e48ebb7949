package bitvector

import "testing"

func TestSetClearTest(t *testing.T) {
	var v Vector
	v = v.Set(0).Set(2)
	if !v.Test(0) || !v.Test(2) {
		t.Fatalf("expected bits 0 and 2 set, got %08b", v)
	}
	if v.Test(1) {
		t.Fatalf("expected bit 1 clear, got %08b", v)
	}
	v = v.Clear(0)
	if v.Test(0) {
		t.Fatalf("expected bit 0 cleared, got %08b", v)
	}
}

func TestPopcountAndLowest(t *testing.T) {
	v := Of(1, 3)
	if got := v.Popcount(); got != 2 {
		t.Fatalf("Popcount() = %d, want 2", got)
	}
	if got := v.Lowest(); got != 1 {
		t.Fatalf("Lowest() = %d, want 1", got)
	}
	if got := Vector(0).Lowest(); got != -1 {
		t.Fatalf("Lowest() on empty = %d, want -1", got)
	}
}

func TestEmptyAndMembers(t *testing.T) {
	v := Of(0, 2, 3)
	if v.Empty() {
		t.Fatalf("expected non-empty vector")
	}
	if Vector(0).Empty() != true {
		t.Fatalf("expected zero vector to be empty")
	}
	want := []int{0, 2, 3}
	got := v.Members()
	if len(got) != len(want) {
		t.Fatalf("Members() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members() = %v, want %v", got, want)
		}
	}
}
