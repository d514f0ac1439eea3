package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/park285/geobluff/internal/apiclient"
	"github.com/park285/geobluff/pkg/geobluffdto"
)

type ServerFlags struct {
	Server  string        `default:"http://127.0.0.1:8000" env:"GEOBLUFF_SERVER" help:"Base URL of the game server"`
	Timeout time.Duration `default:"10s" help:"Request timeout"`
}

func (f ServerFlags) client() *apiclient.Client {
	return apiclient.New(f.Server, apiclient.WithTimeout(f.Timeout))
}

type NewGameCmd struct {
	ServerFlags
	HandSize    int    `help:"Cards per player (3-10)"`
	CategorySet string `help:"Category set id"`
	Language    string `help:"Message language (fr, en)"`
}

func (c *NewGameCmd) Run() error {
	view, err := c.client().NewGame(context.Background(), geobluffdto.NewGameRequest{
		HandSize:    c.HandSize,
		CategorySet: c.CategorySet,
		Language:    c.Language,
	})
	if err != nil {
		return err
	}
	return printJSON(view)
}

type StateCmd struct {
	ServerFlags
	GameID   string `arg:"" help:"Game id"`
	ClientID string `help:"Report this client as present"`
}

func (c *StateCmd) Run() error {
	view, err := c.client().State(context.Background(), c.GameID, c.ClientID)
	if err != nil {
		return err
	}
	return printJSON(view)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
