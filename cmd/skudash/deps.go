package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"sku_dash_v1/internal/config"
	"sku_dash_v1/internal/controller"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/repository"
	"sku_dash_v1/internal/service"
	"sku_dash_v1/pkg/database"
	"sku_dash_v1/pkg/logger"
	"sku_dash_v1/pkg/net"
	"sku_dash_v1/pkg/utils"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sessions *service.SessionStore
	Gateway  net.Gateway
	Services *Services
	App      *controller.AppController
	Nav      *cliNavigator
	closers  []func() error
}

// Services 服务集合
type Services struct {
	Auth *service.AuthService
	SKU  *service.SKUService
	Note *service.NoteService
}

// Close 释放数据库等资源
func (d *Dependencies) Close() {
	for _, fn := range d.closers {
		if err := fn(); err != nil {
			d.Logger.Warn("close resource failed", zap.Error(err))
		}
	}
	_ = d.Logger.Sync()
}

// ==================== 初始化函数 ====================

// initDependencies 按配置组装所有组件
func initDependencies(cfg *config.Config, nav *cliNavigator) (*Dependencies, error) {
	// 1. 日志
	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	deps := &Dependencies{Config: cfg, Logger: log, Nav: nav}

	// 2. 会话存储
	repo, err := initSessionRepository(cfg.Session, deps)
	if err != nil {
		return nil, err
	}
	deps.Sessions = service.NewSessionStore(repo, log)

	// 3. 网络出口
	client := utils.NewAPIClient(utils.ClientOptions{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Debug:   cfg.API.Debug,
	}, log)
	deps.Gateway = net.NewGateway(client, deps.Sessions, log)

	// 4. 业务服务
	deps.Services = &Services{
		Auth: service.NewAuthService(deps.Gateway, deps.Sessions, log),
		SKU:  service.NewSKUService(deps.Gateway),
		Note: service.NewNoteService(deps.Gateway),
	}

	// 5. 顶层控制器
	deps.App = controller.NewAppController(deps.Sessions, deps.Services.Auth, deps.Gateway, nav, log)
	return deps, nil
}

// initSessionRepository file: 单个 JSON 文件；sqlite: 本地数据库
func initSessionRepository(cfg config.SessionConfig, deps *Dependencies) (repository.SessionRepository, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := database.OpenSQLite(filepath.Join(cfg.Path, "session.db"), &model.SessionRecord{})
		if err != nil {
			return nil, fmt.Errorf("init session db: %w", err)
		}
		sqlDB, err := db.DB()
		if err == nil {
			deps.closers = append(deps.closers, sqlDB.Close)
		}
		return repository.NewSQLSessionRepository(db), nil
	default:
		return repository.NewFileSessionRepository(afero.NewOsFs(), cfg.Path), nil
	}
}

// newDashboard 看板控制器
func (d *Dependencies) newDashboard() *controller.DashboardController {
	return controller.NewDashboardController(d.Services.SKU, d.Config.View.ServerSide, d.Logger)
}

// newDetail 详情控制器
func (d *Dependencies) newDetail(opts controller.DetailOptions) *controller.DetailController {
	if opts.Delay <= 0 {
		opts.Delay = d.Config.Autosave.Delay
	}
	return controller.NewDetailController(d.Services.SKU, d.Services.Note, d.Sessions, opts, d.Logger)
}

// start 恢复会话并开始监听 401
func (d *Dependencies) start(ctx context.Context) {
	d.Nav.setQuiet(true)
	d.App.Start(ctx)
	d.Nav.setQuiet(false)
}
