package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/request"
	"github.com/Jacobbrewer1/ticketeer/pkg/setup"
	"github.com/Jacobbrewer1/ticketeer/pkg/ticketing"
	"github.com/Jacobbrewer1/ticketeer/pkg/transcript"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	shutdownTimeout = 10 * time.Second
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Context is cancelled when the application shuts down.
	Context() context.Context
}

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the configuration of the application.
	cfg *Config

	// ctx is cancelled on shutdown.
	ctx context.Context

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// store is the durable backend.
	store dataaccess.Store

	// tickets opens and closes tickets.
	tickets *ticketing.Manager

	// router turns events into replies.
	router *events.Router

	// commandsMut guards commands.
	commandsMut sync.Mutex

	// commands are the IDs of the registered slash commands by guild.
	commands map[string][]string
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router, cfg *Config) *App {
	return &App{
		Logger:   l,
		cfg:      cfg,
		ctx:      context.Background(),
		r:        r,
		commands: make(map[string][]string),
	}
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.ctx = ctx

	// An unreadable store is fatal, before any event is handled.
	store, err := dataaccess.Open(ctx, a.Logger, dataaccess.OpenOptions{
		MongoURI:      a.cfg.MongoUri,
		MongoDatabase: a.cfg.MongoDatabase,
		Path:          a.cfg.StorePath,
	})
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	a.store = store

	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.buildEngine()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.String()))
		if err := s.UpdateStatusComplex(presence()); err != nil {
			a.Error("Error setting presence", slog.String(logging.KeyError, err.Error()))
		}
	})

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running monitoring server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Info("Received shutdown signal")
		return a.ShutdownHook()
	})
	return g.Wait()
}

// buildEngine wires the configuration flow and the ticket manager to the store and the session.
func (a *App) buildEngine() {
	p := newDiscordPlatform(a.s)

	configs := dataaccess.NewConfigStore(a.Logger, a.store, dataaccess.WithSessionTTL(a.cfg.SessionTTL))
	archiver := transcript.NewArchiver(a.Logger, a.store, p)
	a.tickets = ticketing.NewManager(a.Logger, configs, a.store, archiver, p,
		ticketing.WithGraceDelay(a.cfg.CloseGraceDelay),
		ticketing.WithFetchLimit(a.cfg.TranscriptFetchLimit),
	)
	flow := setup.NewFlow(a.Logger, configs, p)

	a.router = events.NewRouter(a.Logger, flow, a.tickets, configs, events.NewLimiter(a.cfg.CreateRateLimit))
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.svr.Shutdown(ctx); err != nil {
		a.Error("Error shutting down monitoring server", slog.String(logging.KeyError, err.Error()))
	}

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		a.Error("Error unregistering slash commands", slog.String(logging.KeyError, err.Error()))
	}

	// Closed tickets still waiting for their channel to be deleted need the session.
	a.tickets.Wait()

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}

	if err := a.store.Close(ctx); err != nil {
		return fmt.Errorf("error closing store: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Buffered so that the gateway is never blocked by the listener.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a, a.healthCheck())).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(a.guildJoinedHandler())

	// Bot left guild.
	a.s.AddHandler(a.guildLeaveHandler())

	// Slash commands and components.
	a.s.AddHandler(interactionHandler(a, a.router))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		if err := a.registerGuildCommands(g.ID); err != nil {
			return err
		}
	}
	return nil
}

// registerGuildCommands creates the slash commands of a guild once.
func (a *App) registerGuildCommands(guildID string) error {
	a.commandsMut.Lock()
	defer a.commandsMut.Unlock()

	if _, ok := a.commands[guildID]; ok {
		return nil
	}

	ids := make([]string, 0, len(slashCommands))
	for _, cmd := range slashCommands {
		created, err := a.s.ApplicationCommandCreate(a.cfg.ApplicationId, guildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, guildID, err)
		}
		ids = append(ids, created.ID)
	}
	a.commands[guildID] = ids
	return nil
}

func (a *App) forgetGuildCommands(guildID string) {
	a.commandsMut.Lock()
	defer a.commandsMut.Unlock()
	delete(a.commands, guildID)
}

func (a *App) unregisterSlashCommands() error {
	a.commandsMut.Lock()
	defer a.commandsMut.Unlock()

	var errs []error
	for guildID, ids := range a.commands {
		for _, id := range ids {
			if err := a.s.ApplicationCommandDelete(a.cfg.ApplicationId, guildID, id); err != nil {
				errs = append(errs, fmt.Errorf("error deleting command %s for guild %s: %w", id, guildID, err))
			}
		}
		delete(a.commands, guildID)
	}
	return errors.Join(errs...)
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Context() context.Context {
	return a.ctx
}
