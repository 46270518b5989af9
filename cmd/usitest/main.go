package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nekoyama/usitourney/cmd/usitest/internal/cliopt"
	"github.com/nekoyama/usitourney/pkg/book"
	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/pgn"
	"github.com/nekoyama/usitourney/pkg/tournament"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// These flags exist so "-help" discovers them; flag.Parse is never
// called. Their actual values are parsed out of os.Args by cliopt.Parse,
// since several take a run of repeated key=value sub-options that
// flag.Var cannot express as a single token.
var (
	_ = flag.String("engine", "", "Append one engine config (name=… dir=… cmd=… tc=… st=… nodes=… timemargin=… option.K=V …)")
	_ = flag.String("each", "", "Apply the given sub-options to every configured engine")
	_ = flag.String("openings", "", "Configure the opening book (file=… order={random|sequential} start=N)")
	_ = flag.Uint64("concurrency", 1, "Worker count")
	_ = flag.Uint64("games", 0, "Games per pairing (must be at least 1; unbounded when omitted)")
	_ = flag.Uint64("rounds", 2, "Rounds per pairing (must be even)")
	_ = flag.Bool("repeat", false, "Alias for -rounds 2")
	_ = flag.String("pgnout", "", "Enable PGN output (file=… nodes=bool seldepth=bool nps=bool hashfull=bool timeleft=bool latency=bool)")
	_ = flag.String("maxmoves", "512", "Move-limit adjudication (u64 or \"inf\")")
	_ = flag.String("draw", "", "Draw adjudication (movenumber=N movecount=K score=S)")
	_ = flag.String("resign", "", "Resignation adjudication (movecount=K score=S twosided={true|false})")
	_ = flag.Uint64("ratinginterval", 10, "Interval report period (0 disables)")
	_ = flag.String("sprt", "", "Enable SPRT (elo0=… elo1=… alpha=… beta=…)")
	_ = flag.Uint64("srand", 0, "Opening book RNG seed")
	_ = flag.String("event", "?", "PGN Event tag")
	_ = flag.String("site", "?", "PGN Site tag")
	_ = flag.Bool("version", false, "Print the version and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: usitest [options]

usitest runs head-to-head tournaments between USI shogi engines.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	ctx := context.Background()

	opts, err := cliopt.Parse(os.Args[1:], fmt.Sprintf("usitest version %v", version))
	if err == cliopt.Help {
		flag.Usage()
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}
	if opts == nil {
		// -version was handled by cliopt already.
		return
	}
	logw.Infof(ctx, "Parsed options: %+v", opts)

	if len(opts.Engines) < 2 {
		logw.Exitf(ctx, "We require at least two engines to be supplied.")
	}
	if opts.Book == nil {
		logw.Exitf(ctx, "Openings file required.")
	}

	openingBook, err := book.Load(opts.Book.File)
	if err != nil {
		logw.Exitf(ctx, "Failed to load opening book: %v", err)
	}

	var seed *uint64
	if opts.HasRandSeed {
		seed = &opts.RandSeed
	}
	seq := book.NewSequence(openingBook, opts.Book.RandomOrder, opts.Book.StartIndex, seed)

	engines := make([]tournament.EngineSpec, len(opts.Engines))
	engineNames := make([]string, len(opts.Engines))
	engineClocks := make([]clock.TimeControl, len(opts.Engines))
	for i, e := range opts.Engines {
		if e.Cmd == "" {
			logw.Exitf(ctx, "Engine %d has no cmd= configured.", i)
		}

		cfg := usi.Config{Name: e.Name, Dir: e.Dir, Argv: []string{e.Cmd}}
		for _, kv := range e.USIOptions {
			cfg.Options = append(cfg.Options, usi.SetOption{Name: kv.Name, Value: kv.Value})
		}

		margin := time.Duration(e.TimeMarginMS) * time.Millisecond
		engines[i] = tournament.EngineSpec{Config: cfg, TC: e.TC, Margin: margin}
		engineClocks[i] = e.TC

		name := e.Name
		if name == "" {
			name = e.Cmd
		}
		engineNames[i] = name
	}

	matchConfig := buildMatchConfig(opts)

	var games *uint64
	if opts.HasGames {
		games = &opts.Games
	}
	rr, err := tournament.NewRoundRobin(len(engines), opts.Rounds, games, openingBook, seq)
	if err != nil {
		logw.Exitf(ctx, "Failed to construct round robin: %v", err)
	}

	var t tournament.Tournament = rr

	if opts.Sprt != nil {
		t = tournament.NewSPRTWrapper(t, tournament.SPRTConfig{
			Elo0: opts.Sprt.Elo0, Elo1: opts.Sprt.Elo1, Alpha: opts.Sprt.Alpha, Beta: opts.Sprt.Beta,
		})
	}

	if opts.Pgn != nil {
		w, err := pgn.NewWriter(opts.Pgn.File, pgn.Options{
			TrackNodes:    opts.Pgn.TrackNodes,
			TrackSeldepth: opts.Pgn.TrackSeldepth,
			TrackNPS:      opts.Pgn.TrackNPS,
			TrackHashfull: opts.Pgn.TrackHashfull,
			TrackTimeleft: opts.Pgn.TrackTimeleft,
			TrackLatency:  opts.Pgn.TrackLatency,
		}, pgn.MetaData{EventName: opts.EventName, SiteName: opts.SiteName}, engineNames, engineClocks)
		if err != nil {
			logw.Exitf(ctx, "Failed to open PGN output: %v", err)
		}
		t = tournament.NewPgnOutWrapper(t, w)
	}

	t = tournament.NewReporterWrapper(t, engineNames)

	reportInterval := opts.ReportInterval
	if !opts.HasReportInterval {
		reportInterval = 0
	}
	r := tournament.NewRunner(engines, opts.Concurrency, matchConfig, reportInterval)
	r.Run(ctx, t)
}

func buildMatchConfig(opts *cliopt.Options) match.Config {
	var cfg match.Config
	if opts.HasMaxMoves {
		cfg.MaxMoves = &match.MoveLimitConfig{Max: opts.MaxMoves}
	}
	if opts.Draw != nil {
		cfg.Draw = &match.DrawConfig{
			MoveNumber: opts.Draw.MoveNumber,
			MoveCount:  opts.Draw.MoveCount,
			Score:      opts.Draw.Score,
		}
	}
	if opts.Resign != nil {
		cfg.Resign = &match.ResignConfig{
			MoveCount: opts.Resign.MoveCount,
			Score:     opts.Resign.Score,
			TwoSided:  opts.Resign.TwoSided,
		}
	}
	return cfg
}
