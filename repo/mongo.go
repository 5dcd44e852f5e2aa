// Package repo implements the played-game-repository external port (spec
// §6) backed by MongoDB, grounded on common/database/mongo.go's
// MongoManager connection setup and core/domain/repository's
// GameRecordRepository interface plus
// runtime/game/engines/mahjong/persist.go's GamePersister save sequence
// (collect rounds in memory, write once at game end). Trimmed to the
// single SaveGameRecord call ports.GameRepository requires -- the
// teacher's richer per-round document history is a replay concern,
// already covered by the replay package's gzipped event log.
package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mahjongcore/ports"
)

// MongoConfig mirrors common/config's MongoConf mapstructure shape.
type MongoConfig struct {
	URL         string
	Db          string
	MinPoolSize uint64
	MaxPoolSize uint64
}

// MongoGameRepository implements ports.GameRepository.
type MongoGameRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func Dial(ctx context.Context, cfg MongoConfig) (*MongoGameRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(cfg.Db)
	return &MongoGameRepository{client: client, coll: db.Collection("game_records")}, nil
}

type gameRecordDoc struct {
	GameID      string    `bson:"game_id"`
	Players     [4]string `bson:"players"`
	FinalScores [4]int    `bson:"final_scores"`
	Ranking     []int     `bson:"ranking"`
	FinishedAt  time.Time `bson:"finished_at"`
}

// SaveGameRecord is idempotent on game_id: a finished game is upserted
// by its ID so a retried finalize (spec §8: "finish_game is idempotent")
// never creates a duplicate document.
func (r *MongoGameRepository) SaveGameRecord(ctx context.Context, rec ports.GameRecord) error {
	doc := gameRecordDoc{
		GameID: rec.GameID, Players: rec.Players, FinalScores: rec.FinalScores,
		Ranking: rec.Ranking, FinishedAt: time.Now(),
	}
	_, err := r.coll.UpdateOne(ctx,
		map[string]any{"game_id": rec.GameID},
		map[string]any{"$set": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoGameRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
