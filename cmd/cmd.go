// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
}

// loginCommand signs in and persists the session token
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to the music service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored session",
		Action: r.Logout,
	}
}

// registerCommand creates an account without signing in
func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username (prompted when omitted)"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
			&cli.StringFlag{Name: "email", Usage: "Email address (prompted when omitted)"},
			&cli.StringFlag{Name: "nickname", Usage: "Display name, defaults to the username"},
			&cli.StringFlag{Name: "phone", Usage: "Phone number"},
			&cli.StringFlag{Name: "gender", Usage: "0 unspecified, 1 male, 2 female", Value: "0"},
			&cli.StringFlag{Name: "bio", Usage: "Short biography"},
		},
		Action: r.Register,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Print the signed-in account",
		Flags:  jsonFlags(),
		Action: r.WhoAmI,
	}
}

// profileCommand groups profile operations
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the profile card",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change profile fields; omitted flags keep their current value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nickname", Usage: "Display name"},
					&cli.StringFlag{Name: "email", Usage: "Email address"},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
					&cli.StringFlag{Name: "gender", Usage: "0 unspecified, 1 male, 2 female"},
					&cli.StringFlag{Name: "bio", Usage: "Short biography"},
				},
				Action: r.ProfileUpdate,
			},
			{
				Name:  "avatar",
				Usage: "Upload a new avatar image",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.ProfileAvatar,
			},
		},
	}
}

func passwordCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Change your password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "old", Usage: "Current password (prompted when omitted)"},
			&cli.StringFlag{Name: "new", Usage: "New password (prompted when omitted)"},
		},
		Action: r.Password,
	}
}

func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Account management",
		Commands: []*cli.Command{
			{
				Name:   "delete",
				Usage:  "Permanently delete your account and sign out",
				Flags:  []cli.Flag{yesFlag()},
				Action: r.AccountDelete,
			},
		},
	}
}

// playlistsCommand handles the playlist collection
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List and delete your playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, csv or markdown",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read the copy cached by the last successful fetch",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:      "delete",
				Usage:     "Delete playlists by id",
				ArgsUsage: "<id> [id...]",
				Flags: []cli.Flag{
					yesFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent deletes when several ids are given",
						Value: 3,
					},
				},
				Action: r.PlaylistsDelete,
			},
		},
	}
}

// routeCommand runs the navigation guard without changing anything
func routeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "route",
		Usage: "Show where a screen path leads for the current session",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Action: r.Route,
	}
}

func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check form input the way the sign-up form does",
		Commands: []*cli.Command{
			{
				Name:      "email",
				Usage:     "Validate an email address",
				Arguments: []cli.Argument{&cli.StringArg{Name: "value"}},
				Action:    r.ValidateEmail,
			},
			{
				Name:      "password",
				Usage:     "Validate a password",
				Arguments: []cli.Argument{&cli.StringArg{Name: "value"}},
				Action:    r.ValidatePassword,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "start",
				Usage: "Screen path to open first",
				Value: "/",
			},
		},
		Action: r.TUI,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and local database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
