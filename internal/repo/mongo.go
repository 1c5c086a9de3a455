package repo

import (
	"DonationHub/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const donationsCollection = "donations"

type mongoLocation struct {
	City    string  `bson:"city"`
	Address *string `bson:"address"`
}

// mongoDonation — документ коллекции donations.
type mongoDonation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Category       string             `bson:"category"`
	Condition      string             `bson:"condition"`
	ExpirationDate *string            `bson:"expiration_date"`
	Location       mongoLocation      `bson:"location"`
	Available      bool               `bson:"available"`
	ImageURL       *string            `bson:"image_url"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func toMongo(d *model.Donation) mongoDonation {
	return mongoDonation{
		Email:          d.OwnerEmail,
		Name:           d.DonorName,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Condition:      d.Condition,
		ExpirationDate: d.ExpirationDate,
		Location:       mongoLocation{City: d.Location.City, Address: d.Location.Address},
		Available:      d.Available,
		ImageURL:       d.ImageURL,
		CreatedAt:      d.CreatedAt,
	}
}

func (m mongoDonation) toModel() model.Donation {
	return model.Donation{
		ID:             m.ID.Hex(),
		OwnerEmail:     m.Email,
		DonorName:      m.Name,
		Title:          m.Title,
		Description:    m.Description,
		Category:       m.Category,
		Condition:      m.Condition,
		ExpirationDate: m.ExpirationDate,
		Location:       model.Location{City: m.Location.City, Address: m.Location.Address},
		Available:      m.Available,
		ImageURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// MongoDonationRepository хранит пожертвования в MongoDB.
type MongoDonationRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ DonationRepository = (*MongoDonationRepository)(nil)

// NewMongoDonationRepository подключается к MongoDB и создаёт индекс по владельцу.
func NewMongoDonationRepository(ctx context.Context, uri, database string) (*MongoDonationRepository, error) {
	if database == "" {
		database = "donationsdb"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	coll := client.Database(database).Collection(donationsCollection)

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "available", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo create indexes: %w", err)
	}
	return &MongoDonationRepository{client: client, coll: coll}, nil
}

// Close отключает клиента.
func (r *MongoDonationRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// objectID: некорректный hex — это «не найдено».
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func (r *MongoDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	doc := toMongo(d)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid.Hex()
	}
	return nil
}

func (r *MongoDonationRepository) find(ctx context.Context, filter bson.D) ([]model.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoDonation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Donation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *MongoDonationRepository) List(ctx context.Context, onlyAvailable bool) ([]model.Donation, error) {
	filter := bson.D{}
	if onlyAvailable {
		filter = bson.D{{Key: "available", Value: true}}
	}
	return r.find(ctx, filter)
}

func (r *MongoDonationRepository) ListByOwner(ctx context.Context, email string) ([]model.Donation, error) {
	return r.find(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoDonationRepository) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc mongoDonation
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d := doc.toModel()
	return &d, nil
}

// patchFields переводит patch в $set; location обновляется по вложенным путям.
func patchFields(p model.DonationPatch) bson.D {
	set := bson.D{}
	add := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	add("name", p.DonorName)
	add("title", p.Title)
	add("description", p.Description)
	add("category", p.Category)
	add("condition", p.Condition)
	add("expiration_date", p.ExpirationDate)
	add("location.city", p.City)
	add("location.address", p.Address)
	add("image_url", p.ImageURL)
	return set
}

func (r *MongoDonationRepository) Update(ctx context.Context, id string, patch model.DonationPatch) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	filter := bson.D{{Key: "_id", Value: oid}}
	set := patchFields(patch)
	if len(set) == 0 {
		n, err := r.coll.CountDocuments(ctx, filter)
		return n > 0, err
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// toggleAvailable — update pipeline: инверсия на стороне сервера, без чтения.
// Документ без поля available считается доступным и становится недоступным.
var toggleAvailable = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{{Key: "available", Value: bson.D{{Key: "$not", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$available", true}}},
	}}}}}}},
}

func (r *MongoDonationRepository) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, toggleAvailable)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoDonationRepository) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "available", Value: available}}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoDonationRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoDonationRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
