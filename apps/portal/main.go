// Command portal manages the student roster from a terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/trezcool/masomo-roster/core"
	logsvc "github.com/trezcool/masomo-roster/services/logger"
	"github.com/trezcool/masomo-roster/services/notify"
	"github.com/trezcool/masomo-roster/services/rosterapi"
	"github.com/trezcool/masomo-roster/storage/mirror"
	"github.com/trezcool/masomo-roster/storage/session"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewLogger("PORTAL", conf, log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := mirror.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening mirror: %v", err), err)
	}
	sess := session.NewStore(store)

	cli := commandLine{
		conf:     conf,
		logger:   logger,
		mirror:   store,
		session:  sess,
		source:   rosterapi.NewClient(conf.API.BaseURL, conf.API.Timeout, sess),
		notifier: notify.NewConsoleNotifier(os.Stdout),
		out:      os.Stdout,
		in:       newStdin(),
	}
	err = cli.run(ctx, os.Args)
	if cErr := store.Close(); cErr != nil {
		logger.Error("closing mirror", cErr)
	}
	if err != nil {
		if err != errHelp && err != errReported {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
