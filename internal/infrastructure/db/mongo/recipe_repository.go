package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

const collectionRecipes = "recipes"

type RecipeRepository struct {
	col *mongo.Collection
}

func NewRecipeRepository(db *mongo.Database) *RecipeRepository {
	return &RecipeRepository{col: db.Collection(collectionRecipes)}
}

type mongoRecipe struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Title        string              `bson:"title"`
	Category     string              `bson:"category,omitempty"`
	Cuisine      string              `bson:"cuisine,omitempty"`
	Ingredients  []domain.Ingredient `bson:"ingredients"`
	Instructions string              `bson:"instructions"`
	ImageURL     string              `bson:"image_url,omitempty"`
	PrepMinutes  int                 `bson:"prep_minutes,omitempty"`
	Servings     int                 `bson:"servings,omitempty"`
	CreatedBy    string              `bson:"created_by"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func toMongoRecipe(r *domain.Recipe) mongoRecipe {
	return mongoRecipe{
		Title:        r.Title,
		Category:     r.Category,
		Cuisine:      r.Cuisine,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		ImageURL:     r.ImageURL,
		PrepMinutes:  r.PrepMinutes,
		Servings:     r.Servings,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (m *mongoRecipe) toDomain() *domain.Recipe {
	ingredients := m.Ingredients
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	return &domain.Recipe{
		ID:           m.ID.Hex(),
		Title:        m.Title,
		Category:     m.Category,
		Cuisine:      m.Cuisine,
		Ingredients:  ingredients,
		Instructions: m.Instructions,
		ImageURL:     m.ImageURL,
		PrepMinutes:  m.PrepMinutes,
		Servings:     m.Servings,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// Create inserts a new recipe document.
func (r *RecipeRepository) Create(ctx context.Context, rec *domain.Recipe) (*domain.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoRecipe(rec)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert recipe: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// FindByID retrieves a recipe; malformed ids are reported as not found.
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoRecipe
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func recipeFilter(f ports.ListRecipesFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Cuisine != "" {
		filter["cuisine"] = f.Cuisine
	}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return filter
}

// List returns a page of recipes, newest first, and the total match count.
func (r *RecipeRepository) List(ctx context.Context, f ports.ListRecipesFilter) ([]*domain.Recipe, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := recipeFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Page-1) * int64(f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []mongoRecipe
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	items := make([]*domain.Recipe, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, total, nil
}

// Sample picks one random matching recipe with $sample.
func (r *RecipeRepository) Sample(ctx context.Context, f ports.ListRecipesFilter) (*domain.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: recipeFilter(f)}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrRecipeNotFound
	}
	var doc mongoRecipe
	if err := cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update replaces the editable fields of an existing recipe.
func (r *RecipeRepository) Update(ctx context.Context, rec *domain.Recipe) (*domain.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return nil, domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoRecipe(rec)
	update := bson.M{"$set": bson.M{
		"title":        doc.Title,
		"category":     doc.Category,
		"cuisine":      doc.Cuisine,
		"ingredients":  doc.Ingredients,
		"instructions": doc.Instructions,
		"image_url":    doc.ImageURL,
		"prep_minutes": doc.PrepMinutes,
		"servings":     doc.Servings,
		"updated_at":   doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out mongoRecipe
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return out.toDomain(), nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the recipes collection.
func (r *RecipeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "cuisine", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
