package usi

import (
	"strconv"
	"strings"
)

// ScoreKind distinguishes the three shapes a USI "score" token can take.
type ScoreKind uint8

const (
	ScoreNone ScoreKind = iota
	ScoreCentipawns
	ScoreMate
)

// Score is an engine's evaluation of the position it just searched, per
// the "score {cp|mate} N" info token.
type Score struct {
	Kind       ScoreKind
	Centipawns int32
	// MatePly is signed: positive means the side to move mates, negative
	// means the side to move is mated, in that many plies.
	MatePly int32
}

func (s Score) String() string {
	switch s.Kind {
	case ScoreCentipawns:
		return strconv.Itoa(int(s.Centipawns))
	case ScoreMate:
		return "mate " + strconv.Itoa(int(s.MatePly))
	default:
		return "none"
	}
}

// Info holds the fields an "info ..." line may carry. Any field the line
// omits, or that fails to parse, is left at its zero value rather than
// aborting the line.
type Info struct {
	Score    Score
	Depth    int
	SelDepth int
	Nodes    uint64
	NPS      uint64
	TimeMS   uint64
	HashFull int
}

// parseInfo tokenizes an "info ..." line body (everything after the
// leading "info" token) and fills in the recognised keys. Parsing stops
// at a "string" token, since USI engines use it to introduce free text.
func parseInfo(body string) Info {
	var info Info
	fields := strings.Fields(body)

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "string":
			return info
		case "depth":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					info.Depth = v
				}
				i++
			}
		case "seldepth":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					info.SelDepth = v
				}
				i++
			}
		case "nodes":
			if i+1 < len(fields) {
				if v, err := strconv.ParseUint(fields[i+1], 10, 64); err == nil {
					info.Nodes = v
				}
				i++
			}
		case "nps":
			if i+1 < len(fields) {
				if v, err := strconv.ParseUint(fields[i+1], 10, 64); err == nil {
					info.NPS = v
				}
				i++
			}
		case "time":
			if i+1 < len(fields) {
				if v, err := strconv.ParseUint(fields[i+1], 10, 64); err == nil {
					info.TimeMS = v
				}
				i++
			}
		case "hashfull":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					info.HashFull = v
				}
				i++
			}
		case "score":
			if i+1 < len(fields) {
				kind := fields[i+1]
				i++
				if i+1 < len(fields) {
					switch kind {
					case "cp":
						if v, err := strconv.Atoi(fields[i+1]); err == nil {
							info.Score = Score{Kind: ScoreCentipawns, Centipawns: int32(v)}
						}
						i++
					case "mate":
						if v, err := strconv.Atoi(fields[i+1]); err == nil {
							info.Score = Score{Kind: ScoreMate, MatePly: int32(v)}
						}
						i++
					}
				}
			}
		}
	}
	return info
}
