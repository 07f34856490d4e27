package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sushihentaime/bloglist/internal/common"
)

// MongoStore maps collections onto MongoDB collections. Ids are ObjectIDs, exposed as hex strings.
type MongoStore struct {
	db *mongo.Database
}

type mongoCollection struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) EnsureUnique(ctx context.Context, collection, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) Close() error {
	return common.CloseMongo(s.db)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrMalformedID
	}
	return oid, nil
}

func mongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrDuplicateKey
	default:
		return err
	}
}

func (c *mongoCollection) FindAll(ctx context.Context, dst any) error {
	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: idField, Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var raws []bson.Raw
	for cur.Next(ctx) {
		// cur.Current is only valid until the next call to Next.
		raws = append(raws, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return err
	}

	return decodeAll(dst, raws)
}

func (c *mongoCollection) FindByID(ctx context.Context, id string, dst any) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res := c.coll.FindOne(ctx, bson.D{{Key: idField, Value: oid}})
	if dst == nil {
		return mongoError(res.Err())
	}
	return mongoError(res.Decode(dst))
}

func (c *mongoCollection) Insert(ctx context.Context, doc any) (string, error) {
	d, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	oid := primitive.NewObjectID()
	_, err = c.coll.InsertOne(ctx, append(bson.D{{Key: idField, Value: oid}}, d...))
	if err != nil {
		return "", mongoError(err)
	}

	return oid.Hex(), nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: idField, Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}

func (c *mongoCollection) UpdateByID(ctx context.Context, id string, fields map[string]any, dst any) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.D{}
	for key, value := range fields {
		if key != idField {
			set = append(set, bson.E{Key: key, Value: value})
		}
	}
	if len(set) == 0 {
		return c.FindByID(ctx, id, dst)
	}

	res := c.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: idField, Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if dst == nil {
		return mongoError(res.Err())
	}
	return mongoError(res.Decode(dst))
}

func (c *mongoCollection) updateOne(ctx context.Context, id string, update bson.D) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := c.coll.UpdateOne(ctx, bson.D{{Key: idField, Value: oid}}, update)
	if err != nil {
		return mongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}

func (c *mongoCollection) AppendToArray(ctx context.Context, id, field, value string) error {
	return c.updateOne(ctx, id, bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: value}}}})
}

func (c *mongoCollection) RemoveFromArray(ctx context.Context, id, field, value string) error {
	return c.updateOne(ctx, id, bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: value}}}})
}
