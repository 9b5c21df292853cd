package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/communityhq/community-api/auth"
	"github.com/communityhq/community-api/graph"
	"github.com/communityhq/community-api/internal/config"
	"github.com/communityhq/community-api/internal/db"
	profilespostgres "github.com/communityhq/community-api/profiles/postgres"
	fakeprofilerepo "github.com/communityhq/community-api/profiles/repofake"
	"github.com/communityhq/community-api/server"
	"github.com/communityhq/community-api/token"
	userspostgres "github.com/communityhq/community-api/users/postgres"
	fakeuserrepo "github.com/communityhq/community-api/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	repos, err := buildRepos(c)
	if err != nil {
		return fmt.Errorf("buildRepos: %w", err)
	}

	codec := token.NewCodec()
	issuer, err := token.NewIssuer(codec, c.GetAccessTokenSecret(), c.GetRefreshTokenSecret(),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()))
	if err != nil {
		return fmt.Errorf("token.NewIssuer: %w", err)
	}

	authService, err := auth.NewService(repos, issuer)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	executor, err := graph.NewExecutor(authService, c.GetMaxQueryComplexity())
	if err != nil {
		return fmt.Errorf("graph.NewExecutor: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, authService, executor)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// buildRepos wires the principal and profile stores: postgres when a DSN
// is configured, in-memory otherwise.
func buildRepos(c config.Config) (auth.Repos, error) {
	dsn := c.GetDatabaseDSN()
	if dsn == "" {
		log.Printf("DATABASE_DSN not set, using in-memory stores\n")
		return auth.Repos{
			Users:    fakeuserrepo.NewFakeUserRepo(),
			Profiles: fakeprofilerepo.NewFakeProfileRepo(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, dsn)
	if err != nil {
		return auth.Repos{}, err
	}
	return auth.Repos{
		Users:    userspostgres.NewUserRepo(pool),
		Profiles: profilespostgres.NewProfileRepo(pool),
	}, nil
}

func listenAndServe(httpServer *http.Server) error {
	log.Printf("Server listening on %s\n", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
