package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Serve     ServeCmd         `cmd:"" default:"1" help:"Run the game server"`
	CheckData CheckDataCmd     `cmd:"check-data" help:"Validate the country and category data files"`
	NewGame   NewGameCmd       `cmd:"new-game" help:"Create a game on a running server"`
	State     StateCmd         `cmd:"" help:"Print the state of a game on a running server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("geobluff"),
		kong.Description("Two-player geography bluffing card game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
