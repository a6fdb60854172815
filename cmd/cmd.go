// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// platformsCommand lists the platform catalog
func platformsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "platforms",
		Aliases: []string{"ls"},
		Usage:   "List platforms with their enabled state and character limits",
		Flags:   []cli.Flag{jsonFlag()},
		Action:  r.Platforms,
	}
}

// limitsCommand prints the character limit table
func limitsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "limits",
		Usage:  "Show per-platform character limits",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Limits,
	}
}

// postCommand composes and submits a post
func postCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Compose and publish a post to the selected platforms",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "platform",
				Aliases: []string{"p"},
				Usage:   "Platform to post to (repeatable, defaults to every enabled platform)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "unified or individual (defaults to composer.default_mode)",
			},
			&cli.StringSliceFlag{
				Name:  "text-for",
				Usage: "Individual draft as platform=text (repeatable, implies --mode individual)",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the post text from a file",
			},
			&cli.StringSliceFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "Attach an image file (repeatable, at most 4)",
			},
			&cli.BoolFlag{
				Name:  "from-draft",
				Usage: "Resume the drafts saved after a failed post",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Validate and print the request without sending it",
			},
			jsonFlag(),
		},
		Action: r.Post,
	}
}

// draftsCommand manages drafts kept after failed posts
func draftsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "drafts",
		Usage: "Inspect drafts saved after failed posts",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show saved drafts",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.DraftsList,
			},
			{
				Name:   "clear",
				Usage:  "Discard saved drafts",
				Action: r.DraftsClear,
			},
		},
	}
}

// historyCommand lists and exports post history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show post history",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of posts to show (0 for all)",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, markdown, csv or json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a single post",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, markdown, csv or json",
						Value: "text",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a post from history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive composing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive composer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file while the TUI is running",
				Value: "./tmp/crosspost-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the sandbox backend
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run a sandbox posting backend for demos and local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// apiCommand handles direct backend API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the posting backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Fetch the platform catalog and character limits in one document",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
