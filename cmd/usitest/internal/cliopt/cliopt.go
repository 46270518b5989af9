// Package cliopt parses usitest's command-line surface. Every flag is
// registered with the standard library flag package in cmd/usitest/main.go
// for -help output only; the handful that take repeated key=value
// sub-options (-engine, -each, -openings, -pgnout, -draw, -resign, -sprt)
// don't fit flag.Var's single-token model, so Parse walks os.Args itself
// with a small peekable cursor and consumes every flag, single-valued or
// not, one sub-option group at a time.
package cliopt

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
)

// EngineOptions is one -engine (or -each-merged) block.
type EngineOptions struct {
	Name         string
	Dir          string
	Cmd          string
	TC           clock.TimeControl
	HasTC        bool
	TimeMarginMS uint64
	USIOptions   []KV
}

type KV struct{ Name, Value string }

// BookOptions configures -openings.
type BookOptions struct {
	File        string
	RandomOrder bool
	StartIndex  int
}

// PgnOutOptions configures -pgnout.
type PgnOutOptions struct {
	File          string
	TrackNodes    bool
	TrackSeldepth bool
	TrackNPS      bool
	TrackHashfull bool
	TrackTimeleft bool
	TrackLatency  bool
}

// DrawOptions configures -draw.
type DrawOptions struct {
	MoveNumber uint64
	MoveCount  uint64
	Score      int32
}

// ResignOptions configures -resign.
type ResignOptions struct {
	MoveCount uint64
	Score     int32
	TwoSided  bool
}

// SprtOptions configures -sprt.
type SprtOptions struct {
	Elo0, Elo1  float64
	Alpha, Beta float64
}

// Options is the fully parsed command line.
type Options struct {
	Engines           []EngineOptions
	Book              *BookOptions
	Pgn               *PgnOutOptions
	Draw              *DrawOptions
	Resign            *ResignOptions
	Sprt              *SprtOptions
	MaxMoves          uint64
	HasMaxMoves       bool // false means unbounded ("inf")
	EventName         string
	SiteName          string
	Games             uint64
	HasGames          bool
	Rounds            uint64
	Concurrency       uint64
	RandSeed          uint64
	HasRandSeed       bool
	ReportInterval    uint64
	HasReportInterval bool // false means disabled (interval == 0)
}

func defaultPgnOut() PgnOutOptions {
	return PgnOutOptions{TrackNodes: true, TrackSeldepth: true}
}

func defaultBook() BookOptions {
	return BookOptions{StartIndex: 1}
}

// cursor is a peekable []string iterator over os.Args-shaped tokens,
// mirroring the original cli.rs parser's Peekable<Iter<String>>.
type cursor struct {
	args []string
	pos  int
}

func (c *cursor) peek() (string, bool) {
	if c.pos >= len(c.args) {
		return "", false
	}
	return c.args[c.pos], true
}

func (c *cursor) next() (string, bool) {
	s, ok := c.peek()
	if ok {
		c.pos++
	}
	return s, ok
}

// subOptions consumes a run of "name=value" tokens that don't start with
// "-", calling fn for each, and stops at the next "-flag" or end of input.
func (c *cursor) subOptions(fn func(name, value string) error) error {
	for {
		tok, ok := c.peek()
		if !ok || strings.HasPrefix(tok, "-") {
			return nil
		}
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil
		}
		c.next()
		if err := fn(name, value); err != nil {
			return err
		}
	}
}

// warnIfOverwritingTC warns, rather than errors, when a second tc=/st=/nodes=
// sub-option is seen for the same engine -- the later one wins. Matches
// parse_engine_option's warn-and-overwrite behavior in the original CLI.
func warnIfOverwritingTC(e *EngineOptions) {
	if e.HasTC {
		fmt.Fprintf(os.Stderr, "warning: engine %q: overwriting previously specified time control\n", e.Name)
	}
}

func parseEngineOption(e *EngineOptions, name, value string) error {
	switch {
	case name == "name":
		e.Name = value
	case name == "dir":
		e.Dir = value
	case name == "cmd":
		e.Cmd = value
	case name == "tc":
		warnIfOverwritingTC(e)
		tc, err := clock.Parse(value)
		if err != nil {
			return fmt.Errorf("engine: invalid time control %q: %w", value, err)
		}
		e.TC, e.HasTC = tc, true
	case name == "st":
		warnIfOverwritingTC(e)
		ms, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("engine: invalid st value %q: %w", value, err)
		}
		e.TC = clock.TimeControl{Kind: clock.KindMoveTime, MoveTime: time.Duration(ms) * time.Millisecond}
		e.HasTC = true
	case name == "nodes":
		warnIfOverwritingTC(e)
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("engine: invalid nodes value %q: %w", value, err)
		}
		e.TC = clock.TimeControl{Kind: clock.KindNodes, Nodes: n}
		e.HasTC = true
	case name == "timemargin":
		ms, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("engine: invalid timemargin %q: %w", value, err)
		}
		e.TimeMarginMS = ms
	case strings.HasPrefix(name, "option."):
		e.USIOptions = append(e.USIOptions, KV{Name: strings.TrimPrefix(name, "option."), Value: value})
	default:
		// Unrecognized engine sub-option: ignored, matching the teacher's
		// tolerant USI option parsing elsewhere in the codebase.
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected true/false, got %q", value)
	}
}

// Help is returned (wrapped) when -h/-help/--help was seen, so the caller
// can print its flag.Usage and exit 0 without treating it as an error.
var Help = fmt.Errorf("usage requested")

// Parse consumes args (as from os.Args[1:]) and returns the parsed
// Options. A nil Options with a nil error means -version was handled and
// the caller should exit 0 without further action; a nil Options with
// Help as the error means usage was requested.
func Parse(args []string, version string) (*Options, error) {
	opts := &Options{Rounds: 2, Concurrency: 1, EventName: "?", SiteName: "?",
		ReportInterval: 10, HasReportInterval: true,
		MaxMoves: 512, HasMaxMoves: true}
	var eachOptions []KV

	c := &cursor{args: args}
	for {
		flag, ok := c.next()
		if !ok {
			break
		}

		switch flag {
		case "-version", "--version":
			fmt.Println(version)
			return nil, nil

		case "-h", "-help", "--help":
			return nil, Help

		case "-event":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-event requires a value")
			}
			opts.EventName = value

		case "-site":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-site requires a value")
			}
			opts.SiteName = value

		case "-engine":
			var e EngineOptions
			if err := c.subOptions(func(name, value string) error { return parseEngineOption(&e, name, value) }); err != nil {
				return nil, err
			}
			opts.Engines = append(opts.Engines, e)

		case "-each":
			if err := c.subOptions(func(name, value string) error {
				eachOptions = append(eachOptions, KV{Name: name, Value: value})
				return nil
			}); err != nil {
				return nil, err
			}

		case "-openings":
			if opts.Book != nil {
				return nil, fmt.Errorf("duplicate -openings flag")
			}
			book := defaultBook()
			if err := c.subOptions(func(name, value string) error {
				switch name {
				case "file":
					book.File = value
				case "order":
					book.RandomOrder = value == "random"
				case "start":
					n, err := strconv.Atoi(value)
					if err != nil || n <= 0 {
						return fmt.Errorf("invalid opening start index %q (must be bigger than zero)", value)
					}
					book.StartIndex = n
				}
				return nil
			}); err != nil {
				return nil, err
			}
			opts.Book = &book

		case "-concurrency":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-concurrency requires a value")
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid concurrency value %q (must be bigger than zero)", value)
			}
			opts.Concurrency = n

		case "-srand":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-srand requires a value")
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid random seed %q (must be unsigned integer)", value)
			}
			opts.RandSeed, opts.HasRandSeed = n, true

		case "-games":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-games requires a value")
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid games value %q (must be bigger than zero)", value)
			}
			opts.Games, opts.HasGames = n, true

		case "-rounds":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-rounds requires a value")
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid rounds value %q (must be bigger than zero)", value)
			}
			if n%2 != 0 {
				return nil, fmt.Errorf("odd value for rounds %d! expected an even value", n)
			}
			opts.Rounds = n

		case "-repeat":
			opts.Rounds = 2

		case "-pgnout":
			pgn := defaultPgnOut()
			if err := c.subOptions(func(name, value string) error {
				var err error
				switch name {
				case "file":
					pgn.File = value
				case "nodes":
					pgn.TrackNodes, err = parseBool(value)
				case "seldepth":
					pgn.TrackSeldepth, err = parseBool(value)
				case "nps":
					pgn.TrackNPS, err = parseBool(value)
				case "hashfull":
					pgn.TrackHashfull, err = parseBool(value)
				case "timeleft":
					pgn.TrackTimeleft, err = parseBool(value)
				case "latency":
					pgn.TrackLatency, err = parseBool(value)
				}
				return err
			}); err != nil {
				return nil, err
			}
			if pgn.File == "" {
				return nil, fmt.Errorf("output file required for -pgnout option")
			}
			opts.Pgn = &pgn

		case "-maxmoves":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-maxmoves requires a value")
			}
			switch strings.ToLower(value) {
			case "inf", "infinite":
				opts.HasMaxMoves = false
			default:
				n, err := strconv.ParseUint(value, 10, 64)
				if err != nil || n == 0 {
					return nil, fmt.Errorf("invalid maxmoves value %q (must be non-zero unsigned integer)", value)
				}
				opts.MaxMoves, opts.HasMaxMoves = n, true
			}

		case "-draw":
			draw := DrawOptions{MoveCount: 1}
			if err := c.subOptions(func(name, value string) error {
				switch name {
				case "movenumber":
					n, err := strconv.ParseUint(value, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid movenumber %q for -draw", value)
					}
					draw.MoveNumber = n
				case "movecount":
					n, err := strconv.ParseUint(value, 10, 64)
					if err != nil || n == 0 {
						return fmt.Errorf("invalid movecount %q for -draw", value)
					}
					draw.MoveCount = n
				case "score":
					n, err := strconv.ParseInt(value, 10, 32)
					if err != nil || n < 0 {
						return fmt.Errorf("invalid score %q for -draw", value)
					}
					draw.Score = int32(n)
				default:
					return fmt.Errorf("invalid key %q for -draw", name)
				}
				return nil
			}); err != nil {
				return nil, err
			}
			opts.Draw = &draw

		case "-resign":
			resign := ResignOptions{MoveCount: 1}
			if err := c.subOptions(func(name, value string) error {
				switch name {
				case "movecount":
					n, err := strconv.ParseUint(value, 10, 64)
					if err != nil || n == 0 {
						return fmt.Errorf("invalid movecount %q for -resign", value)
					}
					resign.MoveCount = n
				case "score":
					n, err := strconv.ParseInt(value, 10, 32)
					if err != nil || n < 0 {
						return fmt.Errorf("invalid score %q for -resign", value)
					}
					resign.Score = int32(n)
				case "twosided":
					b, err := parseBool(value)
					if err != nil {
						return fmt.Errorf("invalid boolean %q for twosided for -resign", value)
					}
					resign.TwoSided = b
				default:
					return fmt.Errorf("invalid key %q for -resign", name)
				}
				return nil
			}); err != nil {
				return nil, err
			}
			opts.Resign = &resign

		case "-ratinginterval":
			value, ok := c.next()
			if !ok {
				return nil, fmt.Errorf("-ratinginterval requires a value")
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ratinginterval value %q (must be unsigned integer)", value)
			}
			opts.ReportInterval, opts.HasReportInterval = n, n != 0

		case "-sprt":
			var sprt SprtOptions
			if err := c.subOptions(func(name, value string) error {
				var dst *float64
				switch name {
				case "elo0":
					dst = &sprt.Elo0
				case "elo1":
					dst = &sprt.Elo1
				case "alpha":
					dst = &sprt.Alpha
				case "beta":
					dst = &sprt.Beta
				default:
					return fmt.Errorf("invalid key %q for -sprt", name)
				}
				f, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid %s %q for -sprt", name, value)
				}
				*dst = f
				return nil
			}); err != nil {
				return nil, err
			}
			opts.Sprt = &sprt

		default:
			// Unrecognized flag: ignored rather than rejected, matching the
			// teacher's tolerant handling of unexpected tokens.
		}
	}

	for _, kv := range eachOptions {
		for i := range opts.Engines {
			if err := parseEngineOption(&opts.Engines[i], kv.Name, kv.Value); err != nil {
				return nil, err
			}
		}
	}

	if opts.Sprt != nil && len(opts.Engines) != 2 {
		return nil, fmt.Errorf("SPRT can only be done on two engines")
	}

	return opts, nil
}
