package view

import "testing"

func TestGuard_LatestTicketWins(t *testing.T) {
	var g Guard

	older := g.Begin()
	newer := g.Begin()

	// 新状态的结果先返回
	if !g.Current(newer) {
		t.Fatal("newest ticket should be current")
	}
	// 旧状态的结果后返回，必须丢弃
	if g.Current(older) {
		t.Error("stale ticket must not be current")
	}
}
