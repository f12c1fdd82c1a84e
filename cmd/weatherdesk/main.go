package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/weatherdesk/internal/config"
	"github.com/lox/weatherdesk/internal/desk"
	"github.com/lox/weatherdesk/internal/httputil"
	"github.com/lox/weatherdesk/internal/logging"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/render"
	"github.com/lox/weatherdesk/internal/shell"
	"github.com/lox/weatherdesk/internal/weatherapi"
)

// errPanelFailed makes the process exit non-zero after a panel has already
// printed its error message.
var errPanelFailed = errors.New("request failed")

type CLI struct {
	config.Config `embed:""`

	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`

	History HistoryCmd `cmd:"" help:"Print submitted cities, newest first."`
	Show    ShowCmd    `cmd:"" help:"Print the detail panel for a record."`
	Lookup  LookupCmd  `cmd:"" help:"Look a record up by id."`
	Submit  SubmitCmd  `cmd:"" help:"Submit a new weather request."`
	Shell   ShellCmd   `cmd:"" default:"1" help:"Interactive session with list, detail panel and forms."`
	Wait    WaitCmd    `cmd:"" help:"Block until the backend is reachable."`
}

// runtime carries what every command needs once flags are parsed.
type runtime struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger
	client *weatherapi.Client
}

func (rt *runtime) desk() *desk.Desk {
	return desk.New(rt.ctx, rt.client, rt.logger)
}

type HistoryCmd struct{}

func (c *HistoryCmd) Run(rt *runtime) error {
	d := rt.desk()
	d.Open(rt.ctx)
	st := d.History.State()
	render.History(os.Stdout, st)
	if st.Message != "" {
		return errPanelFailed
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Weather record id."`
}

func (c *ShowCmd) Run(rt *runtime) error {
	d := rt.desk()
	v := d.Detail.Show(rt.ctx, c.ID)
	render.Detail(os.Stdout, v)
	if v.Failed() {
		return errPanelFailed
	}
	return nil
}

type LookupCmd struct {
	ID string `arg:"" help:"Weather record id."`
}

func (c *LookupCmd) Run(rt *runtime) error {
	d := rt.desk()
	res := d.Lookup.Lookup(rt.ctx, c.ID)
	render.Lookup(os.Stdout, res)
	if !res.Success {
		return errPanelFailed
	}
	return nil
}

type SubmitCmd struct {
	Date     string `required:"" help:"Observation date (YYYY-MM-DD)."`
	Location string `required:"" help:"City or place name."`
	Notes    string `help:"Optional notes."`
}

func (c *SubmitCmd) Run(rt *runtime) error {
	d := rt.desk()
	res := d.Submit.Submit(rt.ctx, models.SubmitRequest{
		Date:     c.Date,
		Location: c.Location,
		Notes:    c.Notes,
	})
	render.Submit(os.Stdout, res)
	if !res.Success {
		return errPanelFailed
	}
	return nil
}

type ShellCmd struct{}

func (c *ShellCmd) Run(rt *runtime) error {
	if rt.cfg.MetricsAddr != "" {
		stop := serveMetrics(rt.cfg.MetricsAddr, rt.logger)
		defer stop()
	}
	return shell.Run(rt.ctx, rt.desk(), os.Stdin, os.Stdout)
}

type WaitCmd struct {
	MaxWait time.Duration `name:"max-wait" default:"2m" help:"Give up after this long."`
}

func (c *WaitCmd) Run(rt *runtime) error {
	return rt.client.WaitReady(rt.ctx, c.MaxWait)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("weatherdesk"),
		kong.Description("Submit and look up weather records."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(cli.Config.Validate())

	logger := logging.New(os.Stderr, cli.Config)
	slog.SetDefault(logger)

	opts := []weatherapi.Option{
		weatherapi.WithHTTPClient(httputil.NewClient(cli.Timeout)),
		weatherapi.WithLogger(logger),
	}
	if cli.Breaker {
		opts = append(opts, weatherapi.WithCircuitBreaker(3, 30*time.Second))
	}
	client := weatherapi.NewClient(cli.APIURL, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := kctx.Run(&runtime{
		ctx:    ctx,
		cfg:    cli.Config,
		logger: logger,
		client: client,
	})
	if errors.Is(err, errPanelFailed) {
		cancel()
		os.Exit(1)
	}
	kctx.FatalIfErrorf(err)
}

func serveMetrics(addr string, logger *slog.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}
}
