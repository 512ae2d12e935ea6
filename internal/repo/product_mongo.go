package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"proshop/internal/models"
)

type MongoProductRepo struct {
	DB *mongo.Database
}

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{DB: db}
}

func (r *MongoProductRepo) products() *mongo.Collection {
	return r.DB.Collection("products")
}

func (r *MongoProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	res, err := r.products().InsertOne(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return product, nil
}

func (r *MongoProductRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, err := r.products().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.products().Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, nil, err
	}
	defer cur.Close(ctx)

	items := []models.Product{}
	if err := cur.All(ctx, &items); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *MongoProductRepo) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product := &models.Product{}
	err := r.products().FindOne(ctx, bson.M{"_id": id}).Decode(product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

// ReplaceProduct writes the whole document back, reviews included. There is
// no version predicate: concurrent review appends keep last-writer-wins
// semantics.
func (r *MongoProductRepo) ReplaceProduct(ctx context.Context, product *models.Product) error {
	_, err := r.products().ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	return err
}

func (r *MongoProductRepo) DeleteProduct(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
