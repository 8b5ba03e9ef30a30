package main

import (
	"fmt"
	"io"
	"sync"

	"sku_dash_v1/internal/model"
)

// cliNavigator 命令行下的"页面跳转"：只打印提示
type cliNavigator struct {
	out io.Writer

	mu       sync.Mutex
	quiet    bool // 启动恢复会话期间不打印
	atLogin  bool // 正在执行 login/register，已经在登录页
	expired  bool
	onLogout func()
}

func newNavigator(out io.Writer) *cliNavigator {
	return &cliNavigator{out: out}
}

// ToLogin 会话失效时提示重新登录，同一进程只提示一次
func (n *cliNavigator) ToLogin(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.quiet || n.atLogin || reason == "" || n.expired {
		return
	}
	n.expired = true
	fmt.Fprintf(n.out, "%s\nrun `skudash login` to continue\n", reason)
	if n.onLogout != nil {
		n.onLogout()
	}
}

func (n *cliNavigator) ToDashboard(u *model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.quiet || u == nil {
		return
	}
	fmt.Fprintf(n.out, "logged in as %s (%s)\n", u.Username, u.Role)
}

func (n *cliNavigator) ToDetail(string) {}

// setQuiet 恢复会话期间静默
func (n *cliNavigator) setQuiet(q bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.quiet = q
}

// enterLogin 登录/注册命令：账号密码错误产生的 401 不再提示会话失效
func (n *cliNavigator) enterLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.atLogin = true
}

// OnLogout 会话失效时的额外动作 (watch 命令用来退出)
func (n *cliNavigator) OnLogout(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onLogout = fn
}
