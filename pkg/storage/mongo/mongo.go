package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wordmask/pkg/storage"
)

var ErrConnectDB = fmt.Errorf("unable to establish DB connection")

type wordDoc struct {
	Word  string    `bson:"_id"`
	Added time.Time `bson:"added"`
}

// Storage keeps one document per banned word, the word being the document ID.
type Storage struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// New connects and pings the server. It returns an error wrapping
// storage.ErrDBNotResponding when the server cannot be reached within conf.Timeout.
func New(ctx context.Context, conf *Config) (*Storage, error) {
	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectDB, err)
	}

	s := Storage{client: client, dbName: conf.DBName, collName: conf.collection()}
	if err := s.Ping(ctx); err != nil {
		s.Close(context.Background())
		return nil, err
	}

	return &s, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err)
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) {
	s.client.Disconnect(ctx)
}

func (s *Storage) String() string {
	return "mongo:" + s.dbName + "." + s.collName
}

func (s *Storage) coll() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Words returns all banned words sorted by the word itself.
func (s *Storage) Words(ctx context.Context) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []wordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	words := make([]string, 0, len(docs))
	for _, d := range docs {
		words = append(words, d.Word)
	}

	return words, nil
}

// AddWords upserts words keyed by the word itself, so adding a stored word is a no-op.
func (s *Storage) AddWords(ctx context.Context, words ...string) error {
	valid, err := storage.ValidateWords(words...)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(valid))
	for _, w := range valid {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": w}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"added": now}}).
			SetUpsert(true))
	}

	_, err = s.coll().BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (s *Storage) DeleteWord(ctx context.Context, word string) error {
	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": word})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrWordNotFound
	}

	return nil
}
