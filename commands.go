package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"markestedt/clipslate/config"
	"markestedt/clipslate/platform"
	"markestedt/clipslate/platform/native"
	"markestedt/clipslate/storage"
	"markestedt/clipslate/systray"
	"markestedt/clipslate/translate"
	"markestedt/clipslate/web"
)

var version = "0.1.0"

var (
	debug bool

	fromLang string
	toLang   string
	showSign bool

	historyLimit  int
	historyFormat string
)

var rootCmd = &cobra.Command{
	Use:   "clipslate",
	Short: "Double-press Ctrl+C to translate the clipboard",
	Long: `clipslate watches for a double press of the copy shortcut, translates the
copied text with Baidu or Google and shows the result in an overlay.

Credentials live in config.json and settings in settings.toml, both in the
user config directory. CLIPSLATE_APPID, CLIPSLATE_SECRET_KEY and
CLIPSLATE_TRANSLATION_SERVICE override the credentials file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logLevel.Set(slog.LevelDebug)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent()
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text once and print the result",
	Long: `Translate the arguments, or standard input when no arguments are given,
with the configured service. Languages default to settings.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = strings.TrimSpace(string(data))
		}
		if text == "" {
			return fmt.Errorf("nothing to translate")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		from := fromLang
		if from == "" {
			from = env.settings.Translation.SourceLang
		}
		to := toLang
		if to == "" {
			to = env.settings.Translation.TargetLang
		}

		return translateOnce(cmd.Context(), cmd.OutOrStdout(), env.creds.Translate(), text, from, to, showSign)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}

		db, err := storage.Open(dir)
		if err != nil {
			return err
		}
		defer db.Close()

		return printHistory(cmd.OutOrStdout(), db, historyLimit, historyFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	translateCmd.Flags().StringVarP(&fromLang, "from", "f", "", "Source language code (default from settings, \"auto\" to detect)")
	translateCmd.Flags().StringVarP(&toLang, "to", "t", "", "Target language code (default from settings)")
	translateCmd.Flags().BoolVar(&showSign, "show-sign", false, "Print the Baidu request signature")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of translations to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "o", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(translateCmd, historyCmd)
}

// environment is everything loaded from the config directory
type environment struct {
	dir       string
	settings  *config.Settings
	creds     config.Credentials
	credsPath string
}

// loadEnvironment loads .env, settings and credentials. A missing or
// corrupt credentials file is logged and replaced by defaults.
func loadEnvironment() (*environment, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
		slog.Warn("Failed to load .env", "error", err)
	}

	settingsPath, err := config.SettingsPath()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	slog.Debug("Settings loaded", "path", settingsPath)

	credsPath, err := config.CredentialsPath()
	if err != nil {
		return nil, err
	}
	creds, err := config.LoadCredentials(credsPath)
	if err != nil {
		slog.Warn("Using default credentials", "path", credsPath, "error", err)
		if errors.Is(err, config.ErrConfigMissing) {
			if err := config.SaveCredentials(credsPath, creds); err != nil {
				slog.Error("Failed to create credentials file", "error", err)
			}
		}
	}

	creds, err = config.ApplyEnv(creds)
	if err != nil {
		slog.Warn("Ignoring environment overrides", "error", err)
	}

	return &environment{
		dir:       dir,
		settings:  settings,
		creds:     creds,
		credsPath: credsPath,
	}, nil
}

// runAgent runs the hotkey agent with its web overlay and tray icon
func runAgent() error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	// A bad combo is fatal; report it before the tray takes the main goroutine
	if err := checkHotkey(env.settings.Hotkey.Combo, runtime.GOOS); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []AgentOption
	var db *storage.DB
	if env.settings.History.Enabled {
		db, err = storage.Open(env.dir)
		if err != nil {
			slog.Error("Failed to open history, continuing without it", "error", err)
			db = nil
		} else {
			defer db.Close()
			opts = append(opts, WithHistory(db))
		}
	}

	var agent *Agent
	var server *web.Server
	if env.settings.Web.Enabled {
		server = web.NewServer(web.Options{
			DB:              db,
			Settings:        env.settings,
			CredentialsPath: env.credsPath,
			Credentials:     env.creds,
			OnCredentials: func(c config.Credentials) {
				agent.SetCredentials(c)
			},
		})
		opts = append(opts, WithOverlay(server))
	}

	var tray *systray.Manager
	if env.settings.UI.Tray {
		url := fmt.Sprintf("http://localhost:%d", env.settings.Web.Port)
		tray = systray.NewManager(url, iconData)
		opts = append(opts, WithOverlay(trayOverlay{tray: tray}))
	}

	agent = NewAgent(env.settings, env.creds, native.NewClipboard(), opts...)

	if server != nil {
		go func() {
			if err := server.Start(ctx); err != nil {
				slog.Error("Web server error", "error", err)
			}
		}()
	}

	go func() {
		err := config.Watch(ctx, env.credsPath, func(c config.Credentials) {
			c, err := config.ApplyEnv(c)
			if err != nil {
				slog.Warn("Ignoring environment overrides", "error", err)
			}
			agent.SetCredentials(c)
			if server != nil {
				server.UpdateCredentials(c)
			}
		})
		if err != nil {
			slog.Error("Failed to watch credentials", "error", err)
		}
	}()

	agentErr := make(chan error, 1)
	go func() {
		agentErr <- agent.Run(ctx, native.NewHotkey())
		cancel()
	}()

	// The tray needs the main goroutine and blocks until it is closed
	if tray != nil {
		go func() {
			select {
			case <-tray.WaitForQuit():
				cancel()
			case <-ctx.Done():
				tray.Stop()
			}
		}()
		tray.Run()
		cancel()
	}

	if err := <-agentErr; err != nil {
		return err
	}

	slog.Info("clipslate stopped")
	return nil
}

// checkHotkey validates the configured combo for goos
func checkHotkey(combo, goos string) error {
	kc, err := config.ParseHotkey(combo)
	if err != nil {
		return fmt.Errorf("failed to parse hotkey: %w", err)
	}
	return platform.CheckCopyConflict(goos, kc)
}

// translateOnce translates text with a fresh client and writes the result
// to w. With showSign the Baidu signature for the request is printed first.
func translateOnce(ctx context.Context, w io.Writer, creds translate.Credentials, text, from, to string, showSign bool, opts ...translate.Option) error {
	if !creds.Backend.Valid() {
		slog.Warn("Unsupported translation service", "service", creds.Backend)
	}

	if showSign && creds.Backend == translate.Baidu {
		salt := translate.RandomSalt()
		opts = append(opts, translate.WithSalt(func() int { return salt }))
		fmt.Fprintf(w, "salt: %d\nsign: %s\n", salt, translate.Sign(creds.AppID, text, salt, creds.SecretKey))
	}

	client := translate.NewClient(creds, opts...)
	res, err := client.Translate(ctx, text, from, to)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, res.Text)
	return nil
}

// printHistory writes the newest translations as a table, JSON or YAML
func printHistory(w io.Writer, db *storage.DB, limit int, format string) error {
	translations, err := db.GetTranslations(limit, 0)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(translations)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(translations); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tBACKEND\tLANGS\tMS\tSOURCE\tRESULT")
	for _, t := range translations {
		result := t.TranslatedText
		if !t.Success {
			result = "error: " + t.ErrorMessage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s>%s\t%d\t%s\t%s\n",
			t.ID,
			t.Timestamp.Local().Format("2006-01-02 15:04:05"),
			t.Backend,
			t.SourceLang, t.TargetLang,
			t.LatencyMs,
			truncate(t.SourceText, 40),
			truncate(result, 40),
		)
	}
	return tw.Flush()
}
