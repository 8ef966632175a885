package repository

import (
	"context"

	"i4e-backend/internal/domain/transaction"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type TransactionFilter struct {
	UserID int64
	Status string
}

type TransactionRepository interface {
	List(ctx context.Context, f TransactionFilter) ([]transaction.Transaction, error)
}

type MongoTransactionRepository struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepository(coll *mongo.Collection) *MongoTransactionRepository {
	return &MongoTransactionRepository{coll: coll}
}

type transactionRecord struct {
	ID              bson.ObjectID `bson:"_id"`
	UserID          int64         `bson:"userId"`
	Status          string        `bson:"status"`
	Type            string        `bson:"type"`
	Amount          float64       `bson:"amount"`
	TransactionDate bson.DateTime `bson:"transactionDate"`
}

func (r *MongoTransactionRepository) List(ctx context.Context, f TransactionFilter) ([]transaction.Transaction, error) {
	filter := bson.M{}
	if f.UserID > 0 {
		filter["userId"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "transactionDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []transactionRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}

	out := make([]transaction.Transaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, transaction.Transaction{
			ID:              rec.ID.Hex(),
			UserID:          rec.UserID,
			Status:          rec.Status,
			Type:            rec.Type,
			Amount:          rec.Amount,
			TransactionDate: rec.TransactionDate.Time().UTC(),
		})
	}
	return out, nil
}
