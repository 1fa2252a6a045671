package uasub

import "testing"

func TestEngineRetargetTargetCounts(t *testing.T) {
	cases := []struct {
		subs int
		want int
	}{
		{0, 0},
		{1, 2},
		{2, 2},
		{3, 3},
		{5, 5},
	}
	for _, c := range cases {
		e := &Engine{subs: make(map[uint32]*Subscription), stopped: true}
		for i := 0; i < c.subs; i++ {
			e.subs[uint32(i+1)] = &Subscription{}
		}
		e.retarget()
		if e.target != c.want {
			t.Errorf("retarget with %d subscriptions: target = %d, want %d", c.subs, e.target, c.want)
		}
	}
}
