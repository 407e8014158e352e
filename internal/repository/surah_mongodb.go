package repository

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"islamic-app-api/internal/model"
	"islamic-app-api/pkg/uid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBSurahRepository implements SurahRepository using MongoDB.
type MongoDBSurahRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBSurahRepository creates a new MongoDB surah repository.
func NewMongoDBSurahRepository(uri, database, collection string) (*MongoDBSurahRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	// Unique index on the chapter number
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBSurahRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// Create inserts a new surah, assigning its ID and timestamps.
func (r *MongoDBSurahRepository) Create(ctx context.Context, surah *model.Surah) (*model.Surah, error) {
	now := time.Now().UTC()
	surah.ID = uid.New()
	surah.CreatedAt = now
	surah.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, surah); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to insert surah: %w", err)
	}
	return surah, nil
}

// FindAll returns every surah in insertion order.
func (r *MongoDBSurahRepository) FindAll(ctx context.Context) ([]model.Surah, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query surahs: %w", err)
	}
	defer cursor.Close(ctx)

	surahs := make([]model.Surah, 0)
	if err := cursor.All(ctx, &surahs); err != nil {
		return nil, fmt.Errorf("failed to decode surahs: %w", err)
	}
	return surahs, nil
}

// FindByID looks up a surah by its internal ID.
func (r *MongoDBSurahRepository) FindByID(ctx context.Context, id string) (*model.Surah, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByNumber looks up a surah by its chapter number.
func (r *MongoDBSurahRepository) FindByNumber(ctx context.Context, number int) (*model.Surah, error) {
	return r.findOne(ctx, bson.M{"number": number})
}

func (r *MongoDBSurahRepository) findOne(ctx context.Context, filter bson.M) (*model.Surah, error) {
	var surah model.Surah
	err := r.collection.FindOne(ctx, filter).Decode(&surah)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find surah: %w", err)
	}
	return &surah, nil
}

// UpdatePartial applies the provided fields and returns the updated record.
func (r *MongoDBSurahRepository) UpdatePartial(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Number != nil {
		set["number"] = *update.Number
	}
	if update.NameArabic != nil {
		set["name_arabic"] = *update.NameArabic
	}
	if update.NameUrdu != nil {
		set["name_urdu"] = *update.NameUrdu
	}
	if update.NameEnglish != nil {
		set["name_english"] = *update.NameEnglish
	}
	if update.EnglishMeaning != nil {
		set["english_meaning"] = *update.EnglishMeaning
	}
	if update.DetailsArabic != nil {
		set["details_arabic"] = *update.DetailsArabic
	}
	if update.DetailsEnglish != nil {
		set["details_english"] = *update.DetailsEnglish
	}
	if update.DetailsUrdu != nil {
		set["details_urdu"] = *update.DetailsUrdu
	}
	if update.Tafseer != nil {
		set["tafseer"] = *update.Tafseer
	}
	if update.TotalVerses != nil {
		set["total_verses"] = *update.TotalVerses
	}
	if update.RevelationType != nil {
		set["revelation_type"] = *update.RevelationType
	}
	if update.ChapterNumber != nil {
		set["chapter_number"] = *update.ChapterNumber
	}
	if update.JuzNumbers != nil {
		set["juz_numbers"] = update.JuzNumbers
	}
	if update.SajdahVerses != nil {
		set["sajdah_verses"] = update.SajdahVerses
	}
	if update.BismillahPre != nil {
		set["bismillah_pre"] = *update.BismillahPre
	}
	if update.Place != nil {
		set["place"] = *update.Place
	}
	if update.ChronologicalOrder != nil {
		set["chronological_order"] = *update.ChronologicalOrder
	}
	if update.RukuCount != nil {
		set["ruku_count"] = *update.RukuCount
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var surah model.Surah
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&surah)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to update surah: %w", err)
	}
	return &surah, nil
}

// DeleteByID removes a surah. Returns false if nothing was deleted.
func (r *MongoDBSurahRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete surah: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// SearchByName matches the query case-insensitively against the three
// localized name fields.
func (r *MongoDBSurahRepository) SearchByName(ctx context.Context, query string) ([]model.Surah, error) {
	pattern := regexp.QuoteMeta(query)
	regex := bson.M{"$regex": pattern, "$options": "i"}
	filter := bson.M{"$or": []bson.M{
		{"name_arabic": regex},
		{"name_urdu": regex},
		{"name_english": regex},
	}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search surahs: %w", err)
	}
	defer cursor.Close(ctx)

	surahs := make([]model.Surah, 0)
	if err := cursor.All(ctx, &surahs); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return surahs, nil
}

// Ping verifies the MongoDB connection.
func (r *MongoDBSurahRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close disconnects the MongoDB client.
func (r *MongoDBSurahRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
