package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/app"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/credential"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/mutation"
	"github.com/nhle/taskhub/internal/query"
	"github.com/nhle/taskhub/internal/session"
	appsync "github.com/nhle/taskhub/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskhub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	creds, err := credential.Open()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	resourceCache := cache.New()
	ctrl := session.NewController(creds, resourceCache)

	client := api.NewClient(
		cfg.Server.BaseURL,
		ctrl.Token,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
	)
	ctrl.Bind(client)

	queries := query.New(client, resourceCache)
	mutations := mutation.New(client, resourceCache, ctrl)
	poller := appsync.New(
		queries,
		time.Duration(cfg.Notifications.PollIntervalSec)*time.Second,
	)

	root := app.New(ctrl, queries, mutations, poller, cfg.Display.PageSize)

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	poller.Stop()
	return nil
}
