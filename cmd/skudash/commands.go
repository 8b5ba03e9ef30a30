package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/urfave/cli/v2"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/internal/autosave"
	"sku_dash_v1/internal/controller"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/task"
	"sku_dash_v1/internal/tui"
	"sku_dash_v1/pkg/net"
)

var errNotLoggedIn = cli.Exit("not logged in, run `skudash login`", 1)

func (r *runner) commands() []*cli.Command {
	return []*cli.Command{
		// -------- 会话 --------
		{
			Name:  "login",
			Usage: "log in and remember the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"SKUDASH_PASSWORD"}},
			},
			Action: r.login,
		},
		{
			Name:  "register",
			Usage: "create an account and log in",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"SKUDASH_PASSWORD"}},
				&cli.StringFlag{Name: "role", Value: string(model.RoleBrandUser), Usage: "brand_user | merch_ops"},
			},
			Action: r.register,
		},
		{
			Name:   "logout",
			Usage:  "forget the stored session",
			Action: r.logout,
		},
		{
			Name:   "whoami",
			Usage:  "show the current user",
			Action: r.whoami,
		},

		// -------- 看板 --------
		{
			Name:    "skus",
			Aliases: []string{"ls"},
			Usage:   "list SKUs with summary metrics",
			Flags:   dashboardFlags(),
			Action:  r.listSKUs,
		},
		{
			Name:   "watch",
			Usage:  "refresh the SKU list periodically",
			Flags:  append(dashboardFlags(), &cli.StringFlag{Name: "every", Usage: "cron spec, e.g. @every 30s"}),
			Action: r.watch,
		},

		// -------- 详情 --------
		{
			Name:      "sku",
			Usage:     "show one SKU with its sales history and notes",
			ArgsUsage: "<sku-id>",
			Action:    r.showSKU,
		},
		{
			Name:      "edit",
			Usage:     "open the interactive note editor for a SKU",
			ArgsUsage: "<sku-id>",
			Action:    r.edit,
		},
		{
			Name:  "note",
			Usage: "manage notes without the editor",
			Subcommands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "add a note to a SKU",
					ArgsUsage: "<sku-id> <content...>",
					Action:    r.addNote,
				},
				{
					Name:      "edit",
					Usage:     "replace the content of your note",
					ArgsUsage: "<sku-id> <note-id> <content...>",
					Action:    r.editNote,
				},
				{
					Name:      "delete",
					Usage:     "delete your note",
					ArgsUsage: "<sku-id> <note-id>",
					Flags:     []cli.Flag{&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip confirmation"}},
					Action:    r.deleteNote,
				},
			},
		},
	}
}

func dashboardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "high_return | low_content"},
		&cli.StringFlag{Name: "sort", Value: string(model.SortByName), Usage: "id | name | sales | return_percentage | content_score"},
		&cli.StringFlag{Name: "order", Value: string(model.SortAsc), Usage: "asc | desc"},
	}
}

// ==================== 会话 ====================

func (r *runner) login(c *cli.Context) error {
	r.deps.Nav.enterLogin()
	password, err := r.password(c)
	if err != nil {
		return err
	}
	err = r.deps.App.Login(c.Context, &dto.LoginRequest{
		Username: c.String("username"),
		Password: password,
	})
	return r.reportAuth(err)
}

func (r *runner) register(c *cli.Context) error {
	r.deps.Nav.enterLogin()
	password, err := r.password(c)
	if err != nil {
		return err
	}
	err = r.deps.App.Register(c.Context, &dto.RegisterRequest{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: password,
		Role:     model.Role(c.String("role")),
	})
	return r.reportAuth(err)
}

func (r *runner) logout(c *cli.Context) error {
	if err := r.deps.App.Logout(c.Context); err != nil {
		return r.report(err)
	}
	fmt.Fprintln(r.out, "logged out")
	return nil
}

func (r *runner) whoami(*cli.Context) error {
	s := r.deps.Sessions.Current()
	if s == nil {
		return errNotLoggedIn
	}
	fmt.Fprintf(r.out, "%s <%s> (%s)\n", s.User.Username, s.User.Email, s.User.Role)
	if exp, ok := s.ExpiresAt(); ok {
		fmt.Fprintf(r.out, "token expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// password 未通过参数或环境变量提供时从标准输入读一行
func (r *runner) password(c *cli.Context) (string, error) {
	if p := c.String("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(r.out, "password: ")
	line, err := bufio.NewReader(r.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ==================== 看板 ====================

func (r *runner) listSKUs(c *cli.Context) error {
	if r.deps.Sessions.Current() == nil {
		return errNotLoggedIn
	}
	state, err := viewStateFromFlags(c)
	if err != nil {
		return err
	}

	dash := r.deps.newDashboard()
	if err := dash.Apply(c.Context, func(s *model.ViewState) { *s = state }); err != nil {
		return r.report(err)
	}
	renderDashboard(r.out, dash.Snapshot())
	return nil
}

func (r *runner) watch(c *cli.Context) error {
	if r.deps.Sessions.Current() == nil {
		return errNotLoggedIn
	}
	state, err := viewStateFromFlags(c)
	if err != nil {
		return err
	}
	spec := c.String("every")
	if spec == "" {
		spec = r.deps.Config.Refresh.Spec
	}

	// 1. 会话失效时退出
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	r.deps.Nav.OnLogout(cancel)

	// 2. 本地先设好视图状态，刷新时沿用
	dash := r.deps.newDashboard()
	_ = dash.Apply(ctx, func(s *model.ViewState) { *s = state })

	// 3. 定时刷新
	var mu sync.Mutex
	t := task.NewRefreshTask(dash, spec, r.deps.Config.API.Timeout, r.deps.Logger)
	t.OnResult(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(r.out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
		if err != nil {
			p := controller.Present(err)
			if p.Display == controller.DisplayRedirect {
				r.deps.Nav.ToLogin(controller.ReasonSessionExpired)
				return
			}
			fmt.Fprintf(r.out, "refresh failed: %s (showing previous data)\n", p.Message)
		}
		renderDashboard(r.out, dash.Snapshot())
	})
	if err := t.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	t.Stop()
	return nil
}

// viewStateFromFlags 校验筛选/排序参数
func viewStateFromFlags(c *cli.Context) (model.ViewState, error) {
	state := model.ViewState{
		Search:     strings.TrimSpace(c.String("search")),
		FilterType: model.FilterType(c.String("filter")),
		SortField:  model.SortField(c.String("sort")),
		SortOrder:  model.SortOrder(c.String("order")),
	}
	switch state.FilterType {
	case model.FilterNone, model.FilterHighReturn, model.FilterLowContent:
	default:
		return state, cli.Exit(fmt.Sprintf("unknown filter %q", state.FilterType), 2)
	}
	if !state.SortField.Valid() {
		return state, cli.Exit(fmt.Sprintf("unknown sort field %q", state.SortField), 2)
	}
	if state.SortOrder != model.SortAsc && state.SortOrder != model.SortDesc {
		return state, cli.Exit(fmt.Sprintf("unknown sort order %q", state.SortOrder), 2)
	}
	return state, nil
}

// ==================== 详情 ====================

func (r *runner) showSKU(c *cli.Context) error {
	detail, err := r.openDetail(c, 1, controller.DetailOptions{})
	if err != nil {
		return err
	}
	defer detail.Close()
	renderDetail(r.out, detail.Snapshot())
	return nil
}

func (r *runner) edit(c *cli.Context) error {
	sink, events := tui.EventSink()
	detail, err := r.openDetail(c, 1, controller.DetailOptions{OnEvent: sink})
	if err != nil {
		return err
	}
	defer detail.Close()

	m := tui.NewModel(c.Context, detail, events)
	_, err = tea.NewProgram(m, tea.WithContext(c.Context)).Run()
	// Ctrl+C 中断时 ctx 已结束，不算错误
	if err != nil && c.Context.Err() == nil {
		return err
	}
	return nil
}

func (r *runner) addNote(c *cli.Context) error {
	content := strings.Join(c.Args().Tail(), " ")
	if strings.TrimSpace(content) == "" {
		return r.report(autosave.ErrEmptyContent)
	}

	var saved *model.Note
	detail, err := r.openDetail(c, 2, controller.DetailOptions{
		OnEvent: func(ev autosave.Event) {
			if ev.Note != nil {
				saved = ev.Note
			}
		},
	})
	if err != nil {
		return err
	}
	defer detail.Close()

	if err := detail.Type(content); err != nil {
		return r.report(err)
	}
	if err := detail.SaveNow(c.Context); err != nil {
		return r.report(err)
	}
	if saved != nil {
		fmt.Fprintf(r.out, "saved note %s\n", saved.ID)
	}
	return nil
}

func (r *runner) editNote(c *cli.Context) error {
	detail, err := r.openDetail(c, 3, controller.DetailOptions{})
	if err != nil {
		return err
	}
	defer detail.Close()

	note, err := detail.EditNote(c.Context, c.Args().Get(1), strings.Join(c.Args().Slice()[2:], " "))
	if err != nil {
		return r.report(err)
	}
	fmt.Fprintf(r.out, "updated note %s\n", note.ID)
	return nil
}

func (r *runner) deleteNote(c *cli.Context) error {
	detail, err := r.openDetail(c, 2, controller.DetailOptions{})
	if err != nil {
		return err
	}
	defer detail.Close()

	id := c.Args().Get(1)
	err = detail.DeleteNote(c.Context, id, func(n model.Note) bool {
		if c.Bool("yes") {
			return true
		}
		fmt.Fprintf(r.out, "delete note %q? [y/N] ", preview(n.Content, 40))
		line, _ := bufio.NewReader(r.in).ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(line), "y")
	})
	if err != nil {
		return r.report(err)
	}
	fmt.Fprintf(r.out, "deleted note %s\n", id)
	return nil
}

// openDetail 校验参数个数、登录态，然后打开详情
func (r *runner) openDetail(c *cli.Context, minArgs int, opts controller.DetailOptions) (*controller.DetailController, error) {
	if c.NArg() < minArgs {
		_ = cli.ShowSubcommandHelp(c)
		return nil, cli.Exit("", 2)
	}
	if r.deps.Sessions.Current() == nil {
		return nil, errNotLoggedIn
	}
	detail := r.deps.newDetail(opts)
	if err := detail.Open(c.Context, c.Args().First()); err != nil {
		// 备注加载失败时 SKU 仍可展示
		if detail.Snapshot().SKU == nil {
			detail.Close()
			return nil, r.report(err)
		}
		fmt.Fprintf(r.out, "notes unavailable: %s\n", controller.Present(err).Message)
	}
	return detail, nil
}

// ==================== 错误展示 ====================

// report 错误 -> 命令行输出和退出码
func (r *runner) report(err error) error {
	if err == nil {
		return nil
	}
	p := controller.Present(err)
	switch p.Display {
	case controller.DisplayRedirect:
		r.deps.Nav.ToLogin(controller.ReasonSessionExpired)
		return cli.Exit("", 3)
	case controller.DisplayRetry:
		return cli.Exit(p.Message+" (try again)", 1)
	default:
		return cli.Exit(p.Message, 1)
	}
}

// reportAuth 登录/注册时 401 表示账号或密码错误，不是会话失效
func (r *runner) reportAuth(err error) error {
	var apiErr *net.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == net.KindUnauthorized {
		msg := apiErr.Detail
		if msg == "" {
			msg = "incorrect username or password"
		}
		return cli.Exit(msg, 1)
	}
	return r.report(err)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
