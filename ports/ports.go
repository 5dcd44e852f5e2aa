// Package ports defines the external-collaborator interfaces spec.md §6
// calls out as out of core scope: hand scoring, shanten/wait analysis,
// replay sinking, played-game persistence, and ticket verification. The
// wall construction port is tiles.Builder, declared in package tiles.
// The core engine depends only on these interfaces; it
// never computes yaku/han/fu or shanten itself.
package ports

import (
	"context"

	"mahjongcore/tiles"
)

// ScoreResult is what a Scorer returns for a completed hand.
type ScoreResult struct {
	Han          int
	Fu           int
	Points       int
	YakumanCount int
	Implemented  bool // false for the NullScorer test double
}

// Scorer computes han/fu/points for a winning hand. Grounded on
// riichi_mahjong_4p_engine.go's evalClaimYakuman/callHuPoints call sites,
// but relocated out of the engine per spec §6.
type Scorer interface {
	ScoreHand(ctx context.Context, hand []tiles.Tile, melds int, winTile tiles.Tile,
		isTsumo bool, seatWind, roundWind int, dora []tiles.Tile) (ScoreResult, error)
}

// NullScorer is the zero-value Scorer used where the engine needs a
// Scorer to exercise its settlement flow in tests, without owning a real
// yaku implementation (explicitly out of scope, spec.md §Non-goals).
type NullScorer struct{}

func (NullScorer) ScoreHand(context.Context, []tiles.Tile, int, tiles.Tile, bool, int, int, []tiles.Tile) (ScoreResult, error) {
	return ScoreResult{Implemented: false}, nil
}

// WaitAnalyzer answers tenpai/furiten/wait questions the engine needs
// (the riichi tenpai check, furiten bookkeeping, ron validation) without
// computing shanten itself.
type WaitAnalyzer interface {
	IsTenpai(hand []tiles.Tile, melds int) (bool, error)
	Waits(hand []tiles.Tile, melds int) ([]tiles.Type, error)
}

// NullWaitAnalyzer always reports "not tenpai", sufficient to exercise
// draw/abortive flows where no real shanten engine is wired.
type NullWaitAnalyzer struct{}

func (NullWaitAnalyzer) IsTenpai([]tiles.Tile, int) (bool, error)        { return false, nil }
func (NullWaitAnalyzer) Waits([]tiles.Tile, int) ([]tiles.Type, error)   { return nil, nil }

// ReplaySink receives every domain event for append-only storage,
// grounded on persist.go's per-round record append pattern.
type ReplaySink interface {
	Append(ctx context.Context, gameID string, seq int, payload []byte) error
	Close() error
}

// GameRepository is the played-game persistence port, grounded on
// core/domain/repository/game_record_repository.go.
type GameRepository interface {
	SaveGameRecord(ctx context.Context, rec GameRecord) error
}

type GameRecord struct {
	GameID    string
	Players   [4]string
	FinalScores [4]int
	Ranking   []int
}

// TicketVerifier validates the admission ticket presented on connect.
type TicketVerifier interface {
	Verify(ticket string) (userID string, err error)
}
