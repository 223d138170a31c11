package testkit

import "testing"

var (
	nowFn    = func() int { return 1 }
	limitVar = 10
)

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &nowFn, func() int { return 99 })
		Swap(t, &limitVar, 42)
		if nowFn() != 99 || limitVar != 42 {
			t.Fatalf("swap did not take effect")
		}
	})
	if nowFn() != 1 || limitVar != 10 {
		t.Fatalf("swap did not restore: fn=%d var=%d", nowFn(), limitVar)
	}
}
