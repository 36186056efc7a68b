// soclog-tools reconstructs high-level game actions from recorded game
// event logs, stores them, and reports statistics over them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akvileja/soclog-tools/internal/applog"
	"github.com/akvileja/soclog-tools/internal/application"
	"github.com/akvileja/soclog-tools/internal/config"
	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/genlog"
	"github.com/akvileja/soclog-tools/internal/persistence"
	"github.com/akvileja/soclog-tools/internal/soclog"
	"github.com/akvileja/soclog-tools/internal/stats"
	"github.com/akvileja/soclog-tools/internal/watcher"
)

var (
	version   = "dev"
	commit    = "local"
	buildDate = "unknown"
)

var (
	cfg      config.Config
	cfgPath  string
	dbPath   string
	debug    bool
	memStore bool

	keepPreGame bool
	jsonOut     bool
	saveToDB    bool
	atClientPN  int

	listLimit    int
	listOffset   int
	listName     string
	listFinished bool

	filterPN  int
	filterOut string

	genSeed    int64
	genTurns   int
	genPlayers int
	genName    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "soclog-tools",
	Short: "Reconstruct game actions from recorded event logs",
	Long: `soclog-tools parses .soclog event logs (full server logs or single-client
logs), reconstructs the high-level actions each message sequence encodes,
and can store results in SQLite and aggregate statistics over them.`,
	Version:       fmt.Sprintf("%s (%s, %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		explicit := cmd.Flags().Changed("config")
		path := cfgPath
		if !explicit {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path, explicit)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.DBPath = dbPath
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}
		if keepPreGame {
			cfg.KeepPreGame = true
		}
		applog.Init(cfg.Debug)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract the action sequence of one or more event logs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var statsCmd = &cobra.Command{
	Use:   "stats [FILE...]",
	Short: "Aggregate statistics over event logs, or over the database",
	Long: `With file arguments, extracts each log in place and aggregates their
statistics. Without arguments, aggregates everything stored in the database.`,
	RunE: runStats,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List games stored in the database",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete UID...",
	Short: "Delete stored games by UID or UID prefix",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Watch a directory and import event logs as they grow",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

var filterCmd = &cobra.Command{
	Use:   "filter FILE",
	Short: "Write the at-client view one player would have of a full log",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilter,
}

var genCmd = &cobra.Command{
	Use:   "gen FILE",
	Short: "Generate a synthetic event log",
	Args:  cobra.ExactArgs(1),
	RunE:  runGen,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "soclog-tools %s (%s, built %s)\n", version, commit, buildDate)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "TOML config file")
	pf.StringVar(&dbPath, "db", "", "SQLite database path")
	pf.BoolVar(&memStore, "mem", false, "Use an in-memory store instead of SQLite")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	extractCmd.Flags().BoolVar(&keepPreGame, "keep-pregame", false, "Emit an action for the entries before StartGame")
	extractCmd.Flags().BoolVar(&jsonOut, "json", false, "Print actions as JSON")
	extractCmd.Flags().BoolVar(&saveToDB, "save", false, "Also store the extraction in the database")
	extractCmd.Flags().IntVar(&atClientPN, "at-client-pn", -1, "Filter a full log to this player's view before extracting")

	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum games to list")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Games to skip")
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by game name")
	listCmd.Flags().BoolVar(&listFinished, "finished", false, "Only finished games")

	filterCmd.Flags().IntVar(&filterPN, "pn", -1, "Player number whose view to keep (required)")
	filterCmd.Flags().StringVar(&filterOut, "out", "", "Output path (default FILE.pnN.soclog)")
	filterCmd.MarkFlagRequired("pn")

	genCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed")
	genCmd.Flags().IntVar(&genTurns, "turns", 12, "Rolled turns before the winning turn")
	genCmd.Flags().IntVar(&genPlayers, "players", 4, "Seated players (2-4)")
	genCmd.Flags().StringVar(&genName, "name", "synthetic", "Game name in the header")

	rootCmd.AddCommand(extractCmd, statsCmd, listCmd, deleteCmd, watchCmd, filterCmd, genCmd, versionCmd)
}

// openService builds the service over SQLite, or over the in-memory
// store with --mem.
func openService() (*application.Service, error) {
	if memStore {
		return application.NewService(persistence.NewMemoryRepository(), cfg.KeepPreGame), nil
	}
	repo, err := persistence.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.DBPath, err)
	}
	return application.NewService(repo, cfg.KeepPreGame), nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadForExtract(path string) (*soclog.EventLog, error) {
	log, err := soclog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if atClientPN >= 0 {
		if log.IsAtClient {
			return nil, fmt.Errorf("%s: already an at-client log", path)
		}
		log = log.FilterForClient(atClientPN)
	}
	return log, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	var svc *application.Service
	if saveToDB {
		s, err := openService()
		if err != nil {
			return err
		}
		defer s.Close()
		svc = s
	}

	ctx, cancel := signalContext()
	defer cancel()

	for _, path := range args {
		log, err := loadForExtract(path)
		if err != nil {
			return err
		}

		x, err := extract.New(log, cfg.KeepPreGame)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		al := x.Extract()

		if jsonOut {
			if err := printActionsJSON(cmd, path, log, al); err != nil {
				return err
			}
		} else {
			printActionsText(cmd, path, log, al)
		}

		if svc != nil {
			if _, err := svc.ImportFile(ctx, path); err != nil {
				return err
			}
		}
	}
	return nil
}

type actionJSON struct {
	Index           int    `json:"index"`
	Type            string `json:"type"`
	Code            int    `json:"code"`
	EndingGameState int    `json:"ending_game_state"`
	Param1          int    `json:"param1,omitempty"`
	Param2          int    `json:"param2,omitempty"`
	Param3          int    `json:"param3,omitempty"`
	RS1             string `json:"rs1,omitempty"`
	RS2             string `json:"rs2,omitempty"`
	StartIndex      int    `json:"start_index"`
	EntryCount      int    `json:"entry_count"`
}

type extractionJSON struct {
	Source     string       `json:"source"`
	GameName   string       `json:"game_name"`
	IsAtClient bool         `json:"is_at_client"`
	AtClientPN int          `json:"at_client_pn,omitempty"`
	Actions    []actionJSON `json:"actions"`
}

func printActionsJSON(cmd *cobra.Command, path string, log *soclog.EventLog, al *extract.ActionLog) error {
	out := extractionJSON{
		Source:     path,
		GameName:   log.GameName,
		IsAtClient: al.IsAtClient,
		AtClientPN: al.AtClientPN,
		Actions:    make([]actionJSON, 0, len(al.Actions)),
	}
	for i, a := range al.Actions {
		aj := actionJSON{
			Index:           i,
			Type:            a.Type.String(),
			Code:            int(a.Type),
			EndingGameState: a.EndingGameState,
			Param1:          a.Param1,
			Param2:          a.Param2,
			Param3:          a.Param3,
			StartIndex:      a.StartIndex,
			EntryCount:      len(a.Entries),
		}
		if a.RS1 != nil {
			aj.RS1 = a.RS1.String()
		}
		if a.RS2 != nil {
			aj.RS2 = a.RS2.String()
		}
		out.Actions = append(out.Actions, aj)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printActionsText(cmd *cobra.Command, path string, log *soclog.EventLog, al *extract.ActionLog) {
	w := cmd.OutOrStdout()
	mode := "full"
	if al.IsAtClient {
		mode = fmt.Sprintf("at-client pn=%d", al.AtClientPN)
	}
	fmt.Fprintf(w, "%s: game %q (%s), %d entries, %d actions\n",
		path, log.GameName, mode, len(log.Entries), len(al.Actions))
	for i, a := range al.Actions {
		fmt.Fprintf(w, "%4d  @%-5d %s\n", i, a.StartIndex, a)
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	var st *stats.Stats

	if len(args) > 0 {
		logs := make([]*extract.ActionLog, 0, len(args))
		for _, path := range args {
			log, err := soclog.LoadFile(path)
			if err != nil {
				return err
			}
			x, err := extract.New(log, cfg.KeepPreGame)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logs = append(logs, x.Extract())
		}
		st = stats.NewCalculator().Calculate(logs)
	} else {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, cancel := signalContext()
		defer cancel()
		st, err = svc.Stats(ctx, persistence.GameFilter{})
		if err != nil {
			return err
		}
	}

	printStats(cmd, st)
	return nil
}

func printStats(cmd *cobra.Command, st *stats.Stats) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "games:    %d (finished %d)\n", st.GamesSeen, st.FinishedGames)
	fmt.Fprintf(w, "actions:  %d (%d unknown, %.1f%%)\n",
		st.TotalActions, st.UnknownActions, st.UnknownRatio()*100)
	fmt.Fprintf(w, "turns:    %d\n", st.Turns)
	fmt.Fprintf(w, "trades:   %d bank, %d player\n", st.BankTrades, st.PlayerTrades)

	if len(st.DiceRolls) > 0 {
		fmt.Fprintln(w, "\ndice:")
		for total := 2; total <= 12; total++ {
			if n := st.DiceRolls[total]; n > 0 {
				fmt.Fprintf(w, "  %2d  %d\n", total, n)
			}
		}
	}

	if len(st.ByType) > 0 {
		fmt.Fprintln(w, "\nby action type:")
		types := make([]extract.ActionType, 0, len(st.ByType))
		for t := range st.ByType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			fmt.Fprintf(w, "  %-28s %d\n", t, st.ByType[t])
		}
	}

	if len(st.ByPlayer) > 0 {
		fmt.Fprintln(w, "\nby player:")
		pns := make([]int, 0, len(st.ByPlayer))
		for pn := range st.ByPlayer {
			pns = append(pns, pn)
		}
		sort.Ints(pns)
		fmt.Fprintf(w, "  %-3s %6s %6s %6s %6s %6s %5s\n",
			"pn", "turns", "built", "dev", "offers", "robbed", "wins")
		for _, pn := range pns {
			ps := st.ByPlayer[pn]
			built := 0
			for _, n := range ps.PiecesBuilt {
				built += n
			}
			fmt.Fprintf(w, "  %-3d %6d %6d %6d %6d %6d %5d\n",
				pn, ps.Turns, built, ps.DevBought, ps.OffersMade, ps.TimesRobbed, ps.Wins)
		}
	}
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	f := persistence.GameFilter{
		GameName:     listName,
		OnlyFinished: listFinished,
		Limit:        listLimit,
		Offset:       listOffset,
	}
	games, total, err := svc.ListGames(ctx, f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d game(s), showing %d:\n", total, len(games))
	for _, g := range games {
		state := "in progress"
		if g.Finished {
			state = fmt.Sprintf("winner pn=%d", g.WinnerPN)
		}
		fmt.Fprintf(w, "  %s  %-20s %-9s %4d actions (%d unknown)  %s  %s\n",
			g.GameUID[:8], g.GameName, g.LogType, g.ActionCount, g.UnknownCount,
			state, g.ImportedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	games, _, err := svc.ListGames(ctx, persistence.GameFilter{})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, arg := range args {
		var matches []string
		for _, g := range games {
			if strings.HasPrefix(g.GameUID, arg) {
				matches = append(matches, g.GameUID)
			}
		}
		switch len(matches) {
		case 0:
			return fmt.Errorf("no stored game matches %q", arg)
		case 1:
			if err := svc.DeleteGame(ctx, matches[0]); err != nil {
				return err
			}
			fmt.Fprintf(w, "deleted %s\n", matches[0])
		default:
			return fmt.Errorf("%q matches %d games, give more of the UID", arg, len(matches))
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := cfg.WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory given and watch_dir not configured")
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	// Import what is already there, then watch for growth.
	if _, err := svc.ImportDir(ctx, dir); err != nil {
		return err
	}

	lw, err := watcher.NewLogWatcher(dir, watcher.WatcherConfig{
		OnNewData: func(path string, lines []string, startOffset, endOffset int64) {
			if err := svc.ImportLines(ctx, path, lines, startOffset, endOffset); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "import %s: %v\n", path, err)
			}
		},
		OnNewLogFile: func(path string) {
			fmt.Fprintf(cmd.OutOrStdout(), "new log: %s\n", path)
		},
		OnError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		},
	})
	if err != nil {
		return err
	}

	// Files the initial import already covered resume at their cursor.
	paths, err := watcher.DetectAllLogFiles(dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if off, err := svc.NextOffset(ctx, p); err == nil && off > 0 {
			lw.SetOffset(p, off)
		}
	}

	if err := lw.Start(); err != nil {
		return err
	}
	defer lw.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", dir)
	<-ctx.Done()
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	path := args[0]
	log, err := soclog.LoadFile(path)
	if err != nil {
		return err
	}
	if log.IsAtClient {
		return fmt.Errorf("%s: already an at-client log", path)
	}

	filtered := log.FilterForClient(filterPN)

	out := filterOut
	if out == "" {
		base := strings.TrimSuffix(path, soclog.FileExtension)
		out = fmt.Sprintf("%s.pn%d%s", base, filterPN, soclog.FileExtension)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := filtered.Save(f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d entries -> %s\n",
		path, len(filtered.Entries), len(log.Entries), out)
	return nil
}

func runGen(cmd *cobra.Command, args []string) error {
	log := genlog.Generate(genlog.Options{
		GameName: genName,
		Players:  genPlayers,
		Turns:    genTurns,
		Seed:     genSeed,
	})

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := log.Save(f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", args[0], len(log.Entries))
	return nil
}
