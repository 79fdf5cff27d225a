package lazy

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestTableBuildsOnce(t *testing.T) {
	var calls [4]atomic.Int32
	tbl := New(4, func(i int) (*int, error) {
		calls[i].Add(1)
		v := i * 10
		return &v, nil
	})

	var wg sync.WaitGroup
	got := make([]*int, 16)
	for g := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tbl.Get(2)
			if err != nil {
				t.Errorf("Get(2) error = %v", err)
			}
			got[g] = v
		}()
	}
	wg.Wait()

	for g := range got {
		if got[g] != got[0] {
			t.Fatalf("goroutine %d saw a different element", g)
		}
	}
	if *got[0] != 20 {
		t.Errorf("Get(2) = %d, want 20", *got[0])
	}
	if n := calls[2].Load(); n != 1 {
		t.Errorf("factory(2) ran %d times, want 1", n)
	}
	if tbl.Loaded(0) || !tbl.Loaded(2) {
		t.Errorf("Loaded() = [%v %v], want [false true]", tbl.Loaded(0), tbl.Loaded(2))
	}
}

func TestTableCachesErrors(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	tbl := New(2, func(i int) (string, error) {
		calls++
		if i == 1 {
			return "", boom
		}
		return "ok", nil
	})
	for range 3 {
		if _, err := tbl.Get(1); err != boom {
			t.Fatalf("Get(1) error = %v, want %v", err, boom)
		}
	}
	if calls != 1 {
		t.Errorf("factory ran %d times, want 1", calls)
	}
	if v, err := tbl.Get(0); err != nil || v != "ok" {
		t.Errorf("Get(0) = %q, %v", v, err)
	}
}

func TestTableOutOfRange(t *testing.T) {
	tbl := New(1, func(i int) (int, error) { return i, nil })
	tests := []struct {
		name string
		idx  int
	}{
		{"negative", -1},
		{"len", 1},
		{"far", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tbl.Get(tt.idx); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Get(%d) error = %v, want ErrIndexOutOfRange", tt.idx, err)
			}
			if tbl.Loaded(tt.idx) {
				t.Errorf("Loaded(%d) = true", tt.idx)
			}
		})
	}
}

func TestTableAll(t *testing.T) {
	var calls int
	tbl := New(3, func(i int) (int, error) {
		calls++
		return i + 1, nil
	})
	for pass := range 2 {
		var got []int
		for v, err := range tbl.All() {
			if err != nil {
				t.Fatal(err)
			}
			got = append(got, v)
		}
		if len(got) != 3 || got[0] != 1 || got[2] != 3 {
			t.Errorf("pass %d: All() = %v", pass, got)
		}
	}
	if calls != 3 {
		t.Errorf("factory ran %d times over two passes, want 3", calls)
	}

	// stopping early leaves later slots untouched
	tbl = New(3, func(i int) (int, error) { return i, nil })
	for range tbl.All() {
		break
	}
	if tbl.Loaded(1) {
		t.Error("All() built past a break")
	}
}

func TestTableFactoryPanicPropagates(t *testing.T) {
	tbl := New(1, func(i int) (int, error) { panic("bad slot") })
	func() {
		defer func() {
			if r := recover(); r != "bad slot" {
				t.Errorf("recover() = %v, want the factory panic", r)
			}
		}()
		tbl.Get(0)
		t.Error("Get(0) returned, want panic")
	}()
	if tbl.Loaded(0) {
		t.Error("Loaded(0) = true after a panicking build")
	}
}
