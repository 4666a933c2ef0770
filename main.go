/* main.go
 * The "main" method for running the bot. For details about the bot see `readme.md`
 * Usage: go run . -test=false -web=true -roster=equipos.json
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"llaves-bot/api/api"
	"llaves-bot/api/external"
	"llaves-bot/api/shared"
	"llaves-bot/bot"
	"llaves-bot/cache"
	"llaves-bot/config"
	"llaves-bot/metrics"
	"llaves-bot/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// systemSession is used for work main does on behalf of the operator, such as the startup roster import
var systemSession = shared.Session{UserID: "system", Username: "system", Admin: true}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using the environment")
	}

	//Flags
	testPtr := flag.String("test", "false", "Use main or test bot: takes true or false as argument")
	webPtr := flag.String("web", "true", "Serve the HTTP API: takes true or false as argument")
	rosterPtr := flag.String("roster", "", "Roster to import at startup: a JSON file path or an http(s) URL")
	flag.Parse()

	beta, err := convertStrToBool(*testPtr)
	if err != nil {
		log.Fatal("Invalid \"test\" flag. Should be true or false")
	}
	serveWeb, err := convertStrToBool(*webPtr)
	if err != nil {
		log.Fatal("Invalid \"web\" flag. Should be true or false")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	collectors := metrics.New(prometheus.DefaultRegisterer)

	apiPtr, err := api.NewAPI(ctx, cfg, collectors)
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}
	defer func() {
		if err := apiPtr.Close(context.Background()); err != nil {
			log.Println("failed to close store:", err)
		}
	}()

	bracketCache, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Printf("bracket cache disabled: %v", err)
		bracketCache = &cache.Cache{}
	}
	defer bracketCache.Close()

	if *rosterPtr != "" {
		importRoster(ctx, apiPtr, bracketCache, *rosterPtr)
	}

	scheduler := cron.New()
	if err := scheduleRosterRefresh(ctx, scheduler, cfg.RosterRefreshCron, cfg.RosterSource, apiPtr, bracketCache); err != nil {
		log.Fatalf("invalid ROSTER_REFRESH_CRON: %v", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	if serveWeb {
		go func() {
			err := web.Start(ctx, web.Config{
				Addr:           cfg.HTTPAddr,
				API:            apiPtr,
				Cache:          bracketCache,
				Metrics:        collectors,
				TokenSecret:    cfg.WebTokenSecret,
				AllowedOrigins: cfg.CORSOrigins,
			})
			if err != nil {
				log.Printf("HTTP server stopped: %v", err)
			}
		}()
	}

	discordToken := cfg.DiscordToken(beta)
	if discordToken == "" {
		if !serveWeb {
			log.Fatal("no discord token configured and the web server is disabled, nothing to run")
		}
		log.Println("No discord token configured, running the web server only")
		<-ctx.Done()
		return
	}

	b, err := bot.NewBot(discordToken, apiPtr, cfg.ResultRatePerMinute)
	if err != nil {
		log.Fatalf("failed to initialize bot: %v", err)
	}
	b.Cache = bracketCache
	if err := b.Run(ctx); err != nil {
		log.Fatalf("bot stopped: %v", err)
	}
}

// scheduleRosterRefresh re-imports the roster at source on every tick of schedule.
// Nothing is scheduled when either is empty.
func scheduleRosterRefresh(ctx context.Context, scheduler *cron.Cron, schedule, source string, apiPtr *api.API, bracketCache *cache.Cache) error {
	if schedule == "" || source == "" {
		return nil
	}
	_, err := scheduler.AddFunc(schedule, func() {
		importRoster(ctx, apiPtr, bracketCache, source)
	})
	if err != nil {
		return err
	}
	log.Printf("Roster %s refreshes on schedule %q", source, schedule)
	return nil
}

// importRoster loads a roster document and stores its teams, logging what was skipped
func importRoster(ctx context.Context, apiPtr *api.API, bracketCache *cache.Cache, location string) {
	data, err := external.LoadRoster(ctx, location)
	if err != nil {
		log.Printf("failed to load roster %s: %v", location, err)
		return
	}
	report, err := apiPtr.ImportRoster(ctx, systemSession, data)
	if err != nil {
		log.Printf("failed to import roster %s: %v", location, err)
		return
	}
	for _, s := range report.Skipped {
		log.Printf("roster entry skipped (%s): name=%q course=%q", s.Reason, s.Entry.Name, s.Entry.Course)
	}
	log.Printf("Roster imported: %d new teams, %d already present, %d skipped", report.Inserted, report.Existing, len(report.Skipped))
	if err := bracketCache.InvalidateAll(ctx); err != nil {
		log.Println("failed to invalidate bracket cache:", err)
	}
}
