package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"expenzy/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoStore keeps each user as one document that embeds the daily log and
// both summary arrays.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

type userDocument struct {
	ID             string                `bson:"_id"`
	Email          string                `bson:"email"`
	PasswordHash   string                `bson:"password"`
	Income         primitive.Decimal128  `bson:"income"`
	DailyLog       []transactionDocument `bson:"dailyLog"`
	WeeklySummary  []summaryDocument     `bson:"weeklySummary"`
	MonthlySummary []summaryDocument     `bson:"monthlySummary"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

type transactionDocument struct {
	ID          string               `bson:"id"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Category    string               `bson:"category"`
	Description string               `bson:"description,omitempty"`
	IsIncome    bool                 `bson:"isIncome"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

type summaryDocument struct {
	ID          string               `bson:"id"`
	PeriodStart time.Time            `bson:"periodStart"`
	TotalSpent  primitive.Decimal128 `bson:"totalSpent"`
	Categories  []categoryDocument   `bson:"categories"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type categoryDocument struct {
	Category    string               `bson:"category"`
	TotalAmount primitive.Decimal128 `bson:"totalAmount"`
}

// NewMongoStore connects, pings and makes sure email is uniquely indexed
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	users := client.Database(dbName).Collection(usersCollection)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}

	slog.Info("connected to MongoDB", "database", dbName)

	return &MongoStore{client: client, users: users}, nil
}

// Store returns the repositories backed by this connection
func (s *MongoStore) Store() *Store {
	return &Store{
		Users:  newMongoUserRepository(s.users),
		Ledger: newMongoLedgerRepository(s.users),
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func newMongoUserRepository(coll *mongo.Collection) UserRepositoryInterface {
	return &mongoUserRepository{coll: coll}
}

var userProjection = bson.M{"dailyLog": 0, "weeklySummary": 0, "monthlySummary": 0}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}

	income, err := toDecimal128(user.Income)
	if err != nil {
		return err
	}

	doc := userDocument{
		ID:             user.ID.String(),
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		Income:         income,
		DailyLog:       []transactionDocument{},
		WeeklySummary:  []summaryDocument{},
		MonthlySummary: []summaryDocument{},
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(userProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel()
}

func (r *mongoUserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []uuid.UUID
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user ID: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			slog.Warn("skipping user document with invalid id", "id", doc.ID)
			continue
		}
		ids = append(ids, id)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return ids, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

type mongoLedgerRepository struct {
	coll *mongo.Collection
}

func newMongoLedgerRepository(coll *mongo.Collection) LedgerRepositoryInterface {
	return &mongoLedgerRepository{coll: coll}
}

// Append pushes onto the embedded log, which is atomic per document
func (r *mongoLedgerRepository) Append(ctx context.Context, userID uuid.UUID, tx *models.Transaction) error {
	if tx == nil {
		return errors.New("transaction cannot be nil")
	}

	tx.UserID = userID
	if err := tx.BeforeCreate(nil); err != nil {
		return err
	}

	amount, err := toDecimal128(tx.Amount)
	if err != nil {
		return err
	}

	doc := transactionDocument{
		ID:          tx.ID.String(),
		Amount:      amount,
		Category:    tx.Category,
		Description: tx.Description,
		IsIncome:    tx.IsIncome,
		Date:        tx.OccurredAt,
		CreatedAt:   tx.CreatedAt,
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{
			"$push": bson.M{"dailyLog": doc},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoLedgerRepository) ReadLog(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	doc, err := r.load(ctx, userID, bson.M{"dailyLog": 1})
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(doc.DailyLog))
	for _, d := range doc.DailyLog {
		tx, err := d.toModel(userID)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (r *mongoLedgerRepository) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String(), "dailyLog.id": transactionID.String()},
		bson.M{"$pull": bson.M{"dailyLog": bson.M{"id": transactionID.String()}}})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// WriteSummary replaces the array element with the same period start, or
// pushes a new one when there is none
func (r *mongoLedgerRepository) WriteSummary(ctx context.Context, userID uuid.UUID, summary *models.Summary) error {
	field, err := summaryField(summary)
	if err != nil {
		return err
	}

	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	summary.UserID = userID
	summary.PeriodStart = summary.PeriodStart.UTC()
	summary.UpdatedAt = time.Now().UTC()

	doc, err := newSummaryDocument(summary)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		replaced, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": userID.String(), field + ".periodStart": doc.PeriodStart},
			bson.M{"$set": bson.M{field + ".$": doc, "updatedAt": summary.UpdatedAt}})
		if err != nil {
			return fmt.Errorf("failed to replace summary: %w", err)
		}
		if replaced.MatchedCount > 0 {
			return nil
		}

		pushed, err := r.coll.UpdateOne(ctx,
			bson.M{
				"_id": userID.String(),
				field: bson.M{"$not": bson.M{"$elemMatch": bson.M{"periodStart": doc.PeriodStart}}},
			},
			bson.M{"$push": bson.M{field: doc}, "$set": bson.M{"updatedAt": summary.UpdatedAt}})
		if err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
		if pushed.MatchedCount > 0 {
			return nil
		}
	}

	// Neither update matched: either the user is gone or another writer
	// keeps racing us. Report the former when it applies.
	if _, err := r.load(ctx, userID, bson.M{"_id": 1}); err != nil {
		return err
	}
	return fmt.Errorf("failed to upsert %s summary for %s", summary.Kind, summary.PeriodStart.Format(time.DateOnly))
}

func (r *mongoLedgerRepository) ListSummaries(ctx context.Context, userID uuid.UUID, kind string) ([]models.Summary, error) {
	if kind != "" && !models.IsValidSummaryKind(kind) {
		return nil, models.ErrInvalidSummaryKind
	}

	doc, err := r.load(ctx, userID, bson.M{"weeklySummary": 1, "monthlySummary": 1})
	if err != nil {
		return nil, err
	}

	var summaries []models.Summary
	if kind == "" || kind == models.SummaryKindMonthly {
		converted, err := summariesToModels(userID, models.SummaryKindMonthly, doc.MonthlySummary)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, converted...)
	}
	if kind == "" || kind == models.SummaryKindWeekly {
		converted, err := summariesToModels(userID, models.SummaryKindWeekly, doc.WeeklySummary)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, converted...)
	}

	return summaries, nil
}

func (r *mongoLedgerRepository) load(ctx context.Context, userID uuid.UUID, projection bson.M) (*userDocument, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": userID.String()}, options.FindOne().SetProjection(projection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user document: %w", err)
	}
	return &doc, nil
}

func summaryField(summary *models.Summary) (string, error) {
	if summary == nil {
		return "", ErrInvalidSummary
	}
	switch summary.Kind {
	case models.SummaryKindWeekly:
		return "weeklySummary", nil
	case models.SummaryKindMonthly:
		return "monthlySummary", nil
	default:
		return "", ErrInvalidSummary
	}
}

func newSummaryDocument(summary *models.Summary) (summaryDocument, error) {
	total, err := toDecimal128(summary.TotalSpent)
	if err != nil {
		return summaryDocument{}, err
	}

	categories := make([]categoryDocument, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		amount, err := toDecimal128(c.TotalAmount)
		if err != nil {
			return summaryDocument{}, err
		}
		categories = append(categories, categoryDocument{Category: c.Category, TotalAmount: amount})
	}

	return summaryDocument{
		ID:          summary.ID.String(),
		PeriodStart: summary.PeriodStart,
		TotalSpent:  total,
		Categories:  categories,
		UpdatedAt:   summary.UpdatedAt,
	}, nil
}

func summariesToModels(userID uuid.UUID, kind string, docs []summaryDocument) ([]models.Summary, error) {
	out := make([]models.Summary, 0, len(docs))
	for _, d := range docs {
		total, err := fromDecimal128(d.TotalSpent)
		if err != nil {
			return nil, err
		}

		summaryID, _ := uuid.Parse(d.ID)
		categories := make([]models.SummaryCategory, 0, len(d.Categories))
		for i, c := range d.Categories {
			amount, err := fromDecimal128(c.TotalAmount)
			if err != nil {
				return nil, err
			}
			categories = append(categories, models.SummaryCategory{
				SummaryID:   summaryID,
				Category:    c.Category,
				TotalAmount: amount,
				Position:    i,
			})
		}

		out = append(out, models.Summary{
			ID:          summaryID,
			UserID:      userID,
			Kind:        kind,
			PeriodStart: d.PeriodStart.UTC(),
			TotalSpent:  total,
			Categories:  categories,
			UpdatedAt:   d.UpdatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out, nil
}

func (d userDocument) toModel() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	income, err := fromDecimal128(d.Income)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Income:       income,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func (d transactionDocument) toModel(userID uuid.UUID) (models.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid transaction id %q: %w", d.ID, err)
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		Category:    d.Category,
		Description: d.Description,
		IsIncome:    d.IsIncome,
		OccurredAt:  d.Date.UTC(),
		CreatedAt:   d.CreatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode amount %s: %w", v, err)
	}
	return d, nil
}
