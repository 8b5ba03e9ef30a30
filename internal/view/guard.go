package view

import "sync/atomic"

// Ticket 一次拉取对应的视图状态代号
type Ticket uint64

// Guard 以视图状态为准的"最后写入者获胜"
// 每次状态变化调用 Begin 拿到新票据；拉取完成后用 Current 判断结果是否仍可采用，
// 旧状态发起的请求即使后返回也会被丢弃
type Guard struct {
	seq atomic.Uint64
}

// Begin 视图状态变化，作废之前所有票据
func (g *Guard) Begin() Ticket {
	return Ticket(g.seq.Add(1))
}

// Current 票据是否仍是最新
func (g *Guard) Current(t Ticket) bool {
	return uint64(t) == g.seq.Load()
}
