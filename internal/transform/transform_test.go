package transform

import (
	"testing"

	"pgregory.net/rapid"
)

func TestApply_Level0IsPassthrough(t *testing.T) {
	t.Parallel()

	ampbuf := []int32{0, 7} // mid[0] = 7
	got := Apply(ampbuf, 0, 3)

	if ampbuf[0] != 10 {
		t.Fatalf("cur[0]: got %d, want 10", ampbuf[0])
	}

	if got != 10 {
		t.Fatalf("returned wrap: got %d, want 10", got)
	}
}

func TestApply_Level1SumDifference(t *testing.T) {
	t.Parallel()

	// mid[0] = 10 (root average), mid[1] = 3 (stage-0 difference).
	ampbuf := []int32{0, 0, 10, 3}
	got := Apply(ampbuf, 1, 0)

	if ampbuf[0] != 13 || ampbuf[1] != 7 {
		t.Fatalf("got [%d %d], want [13 7]", ampbuf[0], ampbuf[1])
	}

	if got != 7 {
		t.Fatalf("returned wrap: got %d, want 7", got)
	}
}

func TestApply_WrapAppliesOnlyToFirstSample(t *testing.T) {
	t.Parallel()

	withoutWrap := []int32{0, 0, 10, 3}
	Apply(withoutWrap, 1, 0)

	withWrap := []int32{0, 0, 10, 3}
	Apply(withWrap, 1, 1000)

	if withWrap[0] != withoutWrap[0]+1000 {
		t.Fatalf("cur[0]: got %d, want %d", withWrap[0], withoutWrap[0]+1000)
	}

	if withWrap[1] != withoutWrap[1] {
		t.Fatalf("cur[1] should be unaffected by wrap: got %d, want %d", withWrap[1], withoutWrap[1])
	}
}

func TestApply_ReturnsLastSample(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(0, 6).Draw(t, "level")
		cols := 1 << level

		mid := rapid.SliceOfN(rapid.Int32Range(-1000, 1000), cols, cols).Draw(t, "mid")
		wrap := rapid.Int32Range(-1000, 1000).Draw(t, "wrap")

		ampbuf := make([]int32, 2*cols)
		copy(ampbuf[cols:], mid)

		got := Apply(ampbuf, level, wrap)

		if got != ampbuf[cols-1] {
			t.Fatalf("returned value %d does not match cur[cols-1] %d", got, ampbuf[cols-1])
		}
	})
}
