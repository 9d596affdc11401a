package spac_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spacgo/spac"
)

func TestTMap(t *testing.T) {
	p := spac.IntoParser(spac.TMap(func(n int) int { return n * 2 }), spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{2, 4, 6}, out); diff != "" {
		t.Errorf("TMap mismatch (-want +got):\n%s", diff)
	}
}

func TestTMapFlatten(t *testing.T) {
	dup := spac.TMapFlatten(func(n int) []int { return []int{n, n} })
	p := spac.IntoParser(dup, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1, 2, 2}, out); diff != "" {
		t.Errorf("TMapFlatten mismatch (-want +got):\n%s", diff)
	}
}

func TestTCollect(t *testing.T) {
	evensDoubled := spac.TCollect(func(n int) (int, bool) {
		if n%2 != 0 {
			return 0, false
		}
		return n * 2, true
	})
	p := spac.IntoParser(evensDoubled, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{4, 8}, out); diff != "" {
		t.Errorf("TCollect mismatch (-want +got):\n%s", diff)
	}
}

func TestTScan(t *testing.T) {
	running := spac.TScan(0, func(acc, n int) int { return acc + n })
	p := spac.IntoParser(running, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3, 6}, out); diff != "" {
		t.Errorf("TScan mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	evens := spac.Filter(func(n int) bool { return n%2 == 0 })
	p := spac.IntoParser(evens, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{2, 4, 6}, out); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestTake(t *testing.T) {
	p := spac.IntoParser(spac.Take[int](3), spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, out); diff != "" {
		t.Errorf("Take mismatch (-want +got):\n%s", diff)
	}
}

func TestDrop(t *testing.T) {
	p := spac.IntoParser(spac.Drop[int](2), spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{3, 4, 5}, out); diff != "" {
		t.Errorf("Drop mismatch (-want +got):\n%s", diff)
	}
}

func TestTakeWhile(t *testing.T) {
	p := spac.IntoParser(spac.TakeWhile(func(n int) bool { return n < 4 }), spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 1, 2})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, out); diff != "" {
		t.Errorf("TakeWhile mismatch (-want +got):\n%s", diff)
	}
}

func TestDropWhile(t *testing.T) {
	p := spac.IntoParser(spac.DropWhile(func(n int) bool { return n < 4 }), spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 1, 2})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{4, 1, 2}, out); diff != "" {
		t.Errorf("DropWhile mismatch (-want +got):\n%s", diff)
	}
}

func TestTap(t *testing.T) {
	var seen []int
	tapped := spac.Tap(func(n int) { seen = append(seen, n) })
	p := spac.IntoParser(tapped, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, out); diff != "" {
		t.Errorf("Tap output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, seen); diff != "" {
		t.Errorf("Tap side-effect mismatch (-want +got):\n%s", diff)
	}
}

func TestThenComposesTransformers(t *testing.T) {
	evens := spac.Filter(func(n int) bool { return n%2 == 0 })
	doubled := spac.TMap(func(n int) int { return n * 2 })
	pipeline := spac.Then(evens, doubled)
	p := spac.IntoParser(pipeline, spac.ToList[int]())
	out, err := p.ParseSeq([]int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if diff := cmp.Diff([]int{4, 8, 12}, out); diff != "" {
		t.Errorf("Then mismatch (-want +got):\n%s", diff)
	}
}

func TestDownstreamFinishStopsPipelineEarly(t *testing.T) {
	var seen []int
	pipeline := spac.Then(spac.Tap(func(n int) { seen = append(seen, n) }), spac.Take[int](2))
	p := spac.IntoParser(pipeline, spac.First[int]())
	out, err := p.ParseSeq([]int{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("ParseSeq: %v", err)
	}
	if out != 10 {
		t.Errorf("result = %d, want 10", out)
	}
	if diff := cmp.Diff([]int{10}, seen); diff != "" {
		t.Errorf("Tap should only observe what reached it before First finished (-want +got):\n%s", diff)
	}
}
