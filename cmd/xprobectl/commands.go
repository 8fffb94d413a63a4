package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xprobe/pkg/intercept/xswitch"
	"github.com/omeyang/xprobe/pkg/lifecycle/xrun"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

const (
	defaultListen   = "127.0.0.1:9464"
	defaultInterval = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "配置文件路径（.yaml/.yml/.json）",
		Required: true,
	}
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createRunCommand(),
		createServeCommand(),
		createCheckCommand(),
	}
}

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "执行一批演示调用并输出指标",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "calls",
				Usage: "覆盖 demo.calls",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "不输出指标",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdRun(ctx, os.Stdout, os.Stderr, cmd.String("config"), cmd.Int("calls"), cmd.Bool("quiet"))
		},
	}
}

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "周期执行演示调用，暴露 /metrics 并热加载开关",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "HTTP 监听地址",
				Value:   defaultListen,
			},
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "演示批次间隔",
				Value:   defaultInterval,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdServe(ctx, os.Stdout, os.Stderr, cmd.String("config"), cmd.String("listen"), cmd.Duration("interval"))
		},
	}
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置文件",
		Flags: []cli.Flag{configFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdCheck(os.Stdout, cmd.String("config"))
		},
	}
}

// setup 加载配置并构建日志与拦截链路。返回的 teardown 关闭所有资源。
func setup(path string, logOut io.Writer, override func(*appConfig)) (*probe, *appConfig, xlog.Logger, func() error, error) {
	cfg, app, err := loadConfig(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if override != nil {
		override(app)
	}
	logger, closeLog, err := buildLogger(app.Log, logOut)
	if err != nil {
		return nil, nil, nil, nil, &usageError{msg: err.Error()}
	}
	p, err := newProbe(cfg, app, logger)
	if err != nil {
		return nil, nil, nil, nil, errors.Join(err, closeLog())
	}
	teardown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(p.shutdown(ctx), closeLog())
	}
	return p, app, logger, teardown, nil
}

func cmdRun(ctx context.Context, out, logOut io.Writer, path string, calls int, quiet bool) (err error) {
	if calls < 0 {
		return usagef("--calls 不能为负")
	}
	p, app, _, teardown, err := setup(path, logOut, func(c *appConfig) {
		if calls > 0 {
			c.Demo.Calls = calls
		}
	})
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, teardown()) }()

	res, err := runDemo(ctx, p.site, app.Demo)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "演示调用完成: %s\n", res)

	stats := p.reporter.Stats()
	fmt.Fprintf(out, "观察者错误: reported=%d suppressed=%d\n", stats.Reported, stats.Suppressed)
	for _, q := range p.guards {
		fmt.Fprintf(out, "%s: %s\n", q.Name(), q.State())
	}
	if quiet {
		return nil
	}

	fmt.Fprintln(out, "\n# OpenTelemetry")
	if err := p.writeOTelSummary(ctx, out); err != nil {
		return err
	}
	fmt.Fprintln(out, "\n# Prometheus")
	return p.writeExposition(out)
}

func cmdCheck(out io.Writer, path string) error {
	cfg, app, err := loadConfig(path)
	if err != nil {
		return err
	}
	reg, err := xswitch.NewRegistry(cfg)
	if err != nil {
		return err
	}

	def, configured := reg.Snapshot()
	fmt.Fprintf(out, "配置有效: %s\n", path)
	fmt.Fprintf(out, "instrument.enabled: %v\n", def)
	for _, id := range components {
		fmt.Fprintf(out, "  %s: %v\n", id, reg.Enabled(id))
		delete(configured, id)
	}
	for id := range configured {
		fmt.Fprintf(out, "  警告: 未知组件 %q\n", id)
	}
	fmt.Fprintf(out, "sampling: rate=%v by_trace=%v\n", app.Sampling.Rate, app.Sampling.ByTrace)
	fmt.Fprintf(out, "demo: target=%s calls=%d concurrency=%d\n", app.Demo.Target, app.Demo.Calls, app.Demo.Concurrency)
	return nil
}

func cmdServe(ctx context.Context, out, logOut io.Writer, path, listen string, interval time.Duration) (err error) {
	if interval <= 0 {
		return usagef("--interval 必须为正")
	}
	p, app, logger, teardown, err := setup(path, logOut, nil)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, teardown()) }()

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.prom, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	fmt.Fprintf(out, "serving on http://%s/metrics\n", ln.Addr())

	g, _ := xrun.NewGroup(ctx, xrun.WithLogger(logger), xrun.WithName("serve"))
	g.GoWithName("metrics", xrun.HTTPServer(srv, ln, shutdownTimeout))
	g.GoWithName("switches", func(ctx context.Context) error {
		return p.switches.Watch(ctx, func(err error) {
			if err != nil {
				logger.Warn(ctx, "reload switches failed", xlog.Err(err))
				return
			}
			def, configured := p.switches.Snapshot()
			logger.Info(ctx, "switches reloaded",
				slog.Bool("default", def),
				slog.Any("components", configured),
			)
		})
	})
	batch := 0
	g.GoWithName("demo", xrun.Ticker(interval, true, func(ctx context.Context) error {
		res, err := runDemo(ctx, p.site, app.Demo)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		batch++
		fmt.Fprintf(out, "batch %d: %s\n", batch, res)
		return nil
	}))

	// 父 context 结束（信号或超时）属于正常退出。
	err = g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil
	}
	return err
}
