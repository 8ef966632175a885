package repository

import (
	"context"
	"errors"
	"time"

	"i4e-backend/internal/domain/career"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CareerDocumentRepository stores the nested part of a career, one
// document per career id.
type CareerDocumentRepository interface {
	Upsert(ctx context.Context, doc career.Document) error
	Get(ctx context.Context, careerID int64) (career.Document, error)
	GetMany(ctx context.Context, careerIDs []int64) (map[int64]career.Document, error)
	Delete(ctx context.Context, careerID int64) error
	SetYoutubeLinks(ctx context.Context, careerID int64, links []career.YoutubeLink) error
	PushEducationPath(ctx context.Context, careerID int64, path career.EducationPath) error
}

type MongoCareerDocumentRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoCareerDocumentRepository(coll *mongo.Collection) *MongoCareerDocumentRepository {
	return &MongoCareerDocumentRepository{coll: coll, now: time.Now}
}

func (r *MongoCareerDocumentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "careerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Upsert creates the document when absent. Top-level fields, arrays
// included, are replaced rather than merged.
func (r *MongoCareerDocumentRepository) Upsert(ctx context.Context, doc career.Document) error {
	now := r.now().UTC()
	set := documentFields(doc)
	set["updatedAt"] = now
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"careerId": doc.CareerID}, update, options.UpdateOne().SetUpsert(true))
	return err
}

// documentFields is the $set body of an upsert. Arrays are never nil so
// readers always see [] rather than null.
func documentFields(doc career.Document) bson.M {
	return bson.M{
		"metaTitle":        doc.MetaTitle,
		"metaDescription":  doc.MetaDescription,
		"shortDescription": doc.ShortDescription,
		"avgSalary":        doc.AvgSalary,
		"overview":         doc.Overview,
		"jobTitle":         doc.JobTitle,
		"description":      doc.Description,
		"strength":         nonNil(doc.Strength),
		"weakness":         nonNil(doc.Weakness),
		"otherNames":       nonNil(doc.OtherNames),
		"progression":      nonNil(doc.Progression),
		"expectedRange":    nonNil(doc.ExpectedRange),
		"responsibility":   nonNil(doc.Responsibility),
		"workContext":      nonNil(doc.WorkContext),
		"youtubeLink":      nonNil(doc.YoutubeLink),
		"educationPath":    educationPaths(doc.EducationPath),
	}
}

func educationPaths(in []career.EducationPath) []career.EducationPath {
	out := make([]career.EducationPath, 0, len(in))
	for _, p := range in {
		p.Details = nonNil(p.Details)
		out = append(out, p)
	}
	return out
}

func (r *MongoCareerDocumentRepository) Get(ctx context.Context, careerID int64) (career.Document, error) {
	var doc career.Document
	err := r.coll.FindOne(ctx, bson.M{"careerId": careerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return career.Document{}, career.ErrNotFound
		}
		return career.Document{}, err
	}
	return doc, nil
}

func (r *MongoCareerDocumentRepository) GetMany(ctx context.Context, careerIDs []int64) (map[int64]career.Document, error) {
	out := make(map[int64]career.Document, len(careerIDs))
	if len(careerIDs) == 0 {
		return out, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"careerId": bson.M{"$in": careerIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc career.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out[doc.CareerID] = doc
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoCareerDocumentRepository) Delete(ctx context.Context, careerID int64) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"careerId": careerID})
	return err
}

func (r *MongoCareerDocumentRepository) SetYoutubeLinks(ctx context.Context, careerID int64, links []career.YoutubeLink) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"careerId": careerID},
		bson.M{"$set": bson.M{"youtubeLink": nonNil(links), "updatedAt": r.now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return career.ErrNotFound
	}
	return nil
}

func (r *MongoCareerDocumentRepository) PushEducationPath(ctx context.Context, careerID int64, path career.EducationPath) error {
	path.Details = nonNil(path.Details)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"careerId": careerID},
		bson.M{
			"$push": bson.M{"educationPath": path},
			"$set":  bson.M{"updatedAt": r.now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return career.ErrNotFound
	}
	return nil
}
