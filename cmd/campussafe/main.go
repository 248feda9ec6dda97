package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CampusSafe/pkg/alert"
	"CampusSafe/pkg/config"
	"CampusSafe/pkg/dispatch"
	"CampusSafe/pkg/health"
	"CampusSafe/pkg/home"
	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"
	"CampusSafe/pkg/telegram"
	"CampusSafe/pkg/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/redis/go-redis/v9"
)

const version = "0.1.0"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DC2626")).
			Bold(true)
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Path to configuration file")
	envPath := flag.String("env", config.EnvFile, "Path to .env file")
	runCheck := flag.Bool("check", false, "Check emergency backends and exit")
	showVersion := flag.Bool("version", false, "Show version")
	showHelp := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	if *showVersion {
		fmt.Printf("CampusSafe v%s\n", version)
		return
	}

	config.EnvFile = *envPath
	cfg, path, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.StoragePath, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to open log: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("CampusSafe v%s starting (config %s)", version, path)

	// Context for graceful shutdown: cancelling it forces bubbletea to exit
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler: first SIGINT/SIGTERM cancels context, second force-exits
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		select {
		case <-sigCh:
			os.Exit(1)
		case <-time.After(5 * time.Second):
			os.Exit(1)
		}
	}()

	if *runCheck {
		checker := health.NewChecker(5*time.Second, readinessProbes(cfg, appLog)...)
		status := checker.Check(ctx)
		fmt.Println(checker.FormatReport(status))
		if !status.Healthy() {
			appLog.Warn("readiness check failed: %v", status.Warnings)
			os.Exit(1)
		}
		return
	}

	seams, err := buildSeams(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("❌ Failed to set up emergency services: %v", err)
	}
	defer seams.Close()

	printBanner(cfg, appLog.Path())

	ctrl := home.NewController(home.Options{
		Profile:     cfg.Profile,
		Location:    cfg.Location,
		Dispatch:    seams.dispatch,
		Alerter:     seams.alerter,
		Logger:      appLog.Named("home"),
		CallTimeout: cfg.CallTimeout(),
	})

	err = tui.Run(ctx, tui.Options{
		Controller:      ctrl,
		Logger:          appLog.Named("tui"),
		EmergencyNumber: cfg.Emergency.Number,
		Theme:           cfg.UI.Theme,
		ToastDuration:   cfg.ToastDuration(),
		AltScreen:       cfg.UI.AltScreen,
	})
	// Context cancellation is just our shutdown path
	if err != nil && ctx.Err() == nil {
		appLog.Error("TUI error: %v", err)
		log.Fatalf("❌ TUI error: %v", err)
	}

	appLog.Info("CampusSafe stopped")
	fmt.Println("\n👋 Stay safe!")
}

func printBanner(cfg *config.Config, logPath string) {
	fmt.Println(titleStyle.Render("⚠  CampusSafe v" + version))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("   %s · %s", cfg.Profile.DisplayName, cfg.Location.Label())))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("   Dispatch: %s · Emergency number: %s", cfg.Emergency.Backend, cfg.Emergency.Number)))
	fmt.Println(mutedStyle.Render("   Log: " + logPath))
	fmt.Println()
}

func printHelp() {
	fmt.Println(`CampusSafe - Campus safety home screen

Usage:
  campussafe [options]

Options:
  -config <path>   Path to configuration file (default: .campussafe/config.json)
  -env <path>      Path to .env file (default: .env)
  -check           Check emergency backends and exit
  -version         Show version
  -help            Show this help

Keys:
  s                Open the emergency panel
  tab / shift+tab  Move focus
  enter            Press the focused item
  e / c            Call emergency services (panel)
  a                Alert emergency contacts (panel)
  r                Retry the last failed action (panel)
  esc              Close the emergency panel
  q / ctrl+c       Quit

Environment Variables:
  CAMPUSSAFE_USER_NAME         Name shown in the header
  CAMPUSSAFE_EMERGENCY_NUMBER  Number to call
  CAMPUSSAFE_DISPATCH_BACKEND  log, gateway or queue
  CAMPUSSAFE_GATEWAY_URL       Telephony gateway endpoint
  CAMPUSSAFE_REDIS_ADDR        Redis address for the queue backend
  TELEGRAM_BOT_TOKEN           Bot used to alert emergency contacts
                               (contacts must be listed in the config file)`)
}

// seamSet holds the emergency collaborators and whatever must be closed
// when the screen exits.
type seamSet struct {
	dispatch safety.EmergencyDispatch
	alerter  safety.ContactAlerter
	closers  []func() error
}

func (s *seamSet) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// buildSeams wires the dispatch and alert backends selected in cfg.
func buildSeams(ctx context.Context, cfg *config.Config, log *logger.Logger) (*seamSet, error) {
	s := &seamSet{}

	caller := dispatch.Caller{
		Profile:         cfg.Profile,
		Location:        cfg.Location,
		EmergencyNumber: cfg.Emergency.Number,
	}
	dlog := log.Named("dispatch")

	switch cfg.Emergency.Backend {
	case config.BackendGateway:
		s.dispatch = dispatch.NewGatewayDispatcher(dispatch.GatewayConfig{
			URL:     cfg.Emergency.Gateway.URL,
			Token:   cfg.Emergency.Gateway.Token,
			Secret:  cfg.Emergency.Gateway.Secret,
			Timeout: cfg.GatewayTimeout(),
			Retry:   cfg.RetryPolicy(),
		}, caller, dlog)
	case config.BackendQueue:
		q := cfg.Emergency.Queue
		client, err := dispatch.NewRedisClient(ctx, q.RedisAddr, q.RedisPassword, q.RedisDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		s.dispatch = dispatch.NewQueueDispatcher(client, q.Key, caller, dlog)
	default:
		s.dispatch = dispatch.NewLogDispatcher(caller, dlog)
	}

	alog := log.Named("alert")
	contacts := cfg.Telegram.Contacts
	s.alerter = alert.NewLogAlerter(contacts, alog)
	if !cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" && len(contacts) == 0 {
		log.Warn("Telegram token set but no contacts configured, contacts will only be logged")
		fmt.Println("⚠️  Telegram token set but no contacts in the config file, alerts are only logged")
	}
	if cfg.Telegram.Enabled {
		// The screen must still come up when Telegram is unreachable.
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, log.Named("telegram"))
		if err != nil || bot == nil {
			log.Warn("Telegram alerts unavailable, contacts will only be logged: %v", err)
			fmt.Printf("⚠️  Telegram alerts unavailable: %v\n", err)
			return s, nil
		}
		s.alerter = alert.NewTelegramAlerter(bot, contacts, alert.Subject{
			Profile:  cfg.Profile,
			Location: cfg.Location,
		}, alog)
		log.Info("Telegram alerts go out via @%s to %d contacts", bot.Username(), len(contacts))
	}

	return s, nil
}

// readinessProbes builds one probe per configured emergency backend.
func readinessProbes(cfg *config.Config, log *logger.Logger) []health.Probe {
	caller := dispatch.Caller{
		Profile:         cfg.Profile,
		Location:        cfg.Location,
		EmergencyNumber: cfg.Emergency.Number,
	}

	var probes []health.Probe
	switch cfg.Emergency.Backend {
	case config.BackendGateway:
		d := dispatch.NewGatewayDispatcher(dispatch.GatewayConfig{
			URL:     cfg.Emergency.Gateway.URL,
			Timeout: cfg.GatewayTimeout(),
		}, caller, log)
		probes = append(probes, health.Probe{Name: "Dispatch gateway", Check: d.Ping})
	case config.BackendQueue:
		q := cfg.Emergency.Queue
		probes = append(probes, health.Probe{
			Name: "Dispatch queue",
			Check: func(ctx context.Context) error {
				client := redis.NewClient(&redis.Options{
					Addr:     q.RedisAddr,
					Password: q.RedisPassword,
					DB:       q.RedisDB,
				})
				defer client.Close()
				return dispatch.NewQueueDispatcher(client, q.Key, caller, log).Ping(ctx)
			},
		})
	default:
		probes = append(probes, health.Probe{
			Name: "Dispatch",
			Skip: "log backend, calls are only written to the debug log",
		})
	}

	if !cfg.Telegram.Enabled {
		probes = append(probes, health.Probe{
			Name: "Telegram",
			Skip: "disabled, contacts are only logged",
		})
		return probes
	}

	probes = append(probes, health.Probe{
		Name: "Telegram",
		Check: func(ctx context.Context) error {
			done := make(chan error, 1)
			go func() {
				_, err := telegram.ValidateToken(cfg.Telegram.BotToken)
				done <- err
			}()
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return probes
}
