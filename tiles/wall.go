package tiles

import "math/rand"

// Wall is the post-shuffle tile order for one round: a live wall drawn
// from the front, and a 14-tile dead wall holding the replacement (kan)
// tiles and the dora/ura-dora indicator stacks. Grounded on
// material.go's DeckManager split between dm.wall and dm.wang.
type Wall struct {
	live              []Tile
	liveIndex         int
	kanTiles          [4]Tile
	kanIndex          int
	doraIndicators    [5]Tile
	doraIndex         int
	uraDoraIndicators [5]Tile
	uraDoraIndex      int
	remain34          [NumTypes]int
}

// Builder is the external wall-construction port (spec §6): it owns the
// shuffle algorithm so it can be swapped for a seeded/replayable one in
// tests without the engine caring how tiles were ordered.
type Builder interface {
	BuildWall(seed int64) *Wall
}

// DeterministicBuilder is the production Builder: a seeded Fisher-Yates
// shuffle over all 136 tiles, the dead wall taken from the tail the way
// DeckManager.InitRound slices deck.tiles[deadStart:].
type DeterministicBuilder struct{}

func (DeterministicBuilder) BuildWall(seed int64) *Wall {
	all := make([]Tile, 0, NumTiles)
	for ty := Type(0); ty < NumTypes; ty++ {
		for id := 0; id < 4; id++ {
			all = append(all, Tile{Type: ty, ID: id})
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	w := &Wall{}
	for i := range w.remain34 {
		w.remain34[i] = 4
	}
	deadStart := len(all) - 14
	w.live = append(w.live, all[:deadStart]...)
	dead := all[deadStart:]
	copy(w.kanTiles[:], dead[0:4])
	copy(w.doraIndicators[:], dead[4:9])
	copy(w.uraDoraIndicators[:], dead[9:14])
	return w
}

func (w *Wall) Draw() (Tile, bool) {
	if w.liveIndex >= len(w.live) {
		return Tile{}, false
	}
	t := w.live[w.liveIndex]
	w.liveIndex++
	w.remain34[int(t.Type)]--
	return t, true
}

// Remaining is the number of tiles left to draw from the live wall
// before the round ends in exhaustive draw.
func (w *Wall) Remaining() int { return len(w.live) - w.liveIndex }

func (w *Wall) DrawReplacement() (Tile, bool) {
	if w.kanIndex >= 4 {
		return Tile{}, false
	}
	t := w.kanTiles[w.kanIndex]
	w.kanIndex++
	w.remain34[int(t.Type)]--
	return t, true
}

func (w *Wall) RemainingReplacements() int { return 4 - w.kanIndex }

func (w *Wall) RevealDoraIndicator() (Tile, bool) {
	if w.doraIndex >= 5 {
		return Tile{}, false
	}
	t := w.doraIndicators[w.doraIndex]
	w.doraIndex++
	return t, true
}

func (w *Wall) RevealUraDoraIndicator() (Tile, bool) {
	if w.uraDoraIndex >= 5 {
		return Tile{}, false
	}
	t := w.uraDoraIndicators[w.uraDoraIndex]
	w.uraDoraIndex++
	return t, true
}

func (w *Wall) VisibleDoraIndicators() []Tile    { return w.doraIndicators[:w.doraIndex] }
func (w *Wall) VisibleUraDoraIndicators() []Tile { return w.uraDoraIndicators[:w.uraDoraIndex] }

// Clone returns a deep copy, used by RoundState's copy-on-write updates
// (§9: immutable state strategy) so drawing a tile never mutates a wall
// another RoundState value still references.
func (w *Wall) Clone() *Wall {
	c := *w
	c.live = append([]Tile(nil), w.live...)
	return &c
}
