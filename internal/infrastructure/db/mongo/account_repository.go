package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository persists accounts in MongoDB. Mutations are guarded by a
// version counter: an update only applies when the stored version still
// matches the one the caller read.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`

	IsEmailVerified         bool      `bson:"is_email_verified"`
	EmailVerificationToken  string    `bson:"email_verification_token,omitempty"`
	EmailVerificationExpire time.Time `bson:"email_verification_expire,omitempty"`

	ResetPasswordToken  string    `bson:"reset_password_token,omitempty"`
	ResetPasswordExpire time.Time `bson:"reset_password_expire,omitempty"`

	IsActive      bool      `bson:"is_active"`
	LastActiveAt  time.Time `bson:"last_active_at,omitempty"`
	LoginAttempts int       `bson:"login_attempts"`
	LockUntil     time.Time `bson:"lock_until,omitempty"`

	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Create inserts a new account. A unique-index violation on email surfaces as
// domain.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(account)
	doc.Version = 1

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return toDomain(&doc), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByResetToken matches the hashed reset token with an unexpired expiry.
// Expired and unknown tokens are indistinguishable by design.
func (r *AccountRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":  hashedToken,
		"reset_password_expire": bson.M{"$gt": now},
	})
}

// FindByVerificationToken matches the hashed verification token with an
// unexpired expiry.
func (r *AccountRepository) FindByVerificationToken(ctx context.Context, hashedToken string, now time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"email_verification_token":  hashedToken,
		"email_verification_expire": bson.M{"$gt": now},
	})
}

// Update applies the account state conditionally on the version the caller
// read. No matching document means someone else won the race:
// domain.ErrVersionConflict.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "version": account.Version},
		bson.M{
			"$set": bson.M{
				"password_hash":             account.PasswordHash,
				"is_email_verified":         account.IsEmailVerified,
				"email_verification_token":  account.EmailVerificationToken,
				"email_verification_expire": account.EmailVerificationExpire,
				"reset_password_token":      account.ResetPasswordToken,
				"reset_password_expire":     account.ResetPasswordExpire,
				"is_active":                 account.IsActive,
				"last_active_at":            account.LastActiveAt,
				"login_attempts":            account.LoginAttempts,
				"lock_until":                account.LockUntil,
				"updated_at":                now,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}

	account.Version++
	account.UpdatedAt = now
	return nil
}

// EnsureIndexes creates the uniqueness and token-lookup indexes.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "reset_password_token", Value: 1}}},
		{Keys: bson.D{{Key: "email_verification_token", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return toDomain(&doc), nil
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		Name:                    a.Name,
		Email:                   a.Email,
		PasswordHash:            a.PasswordHash,
		Role:                    a.Role,
		IsEmailVerified:         a.IsEmailVerified,
		EmailVerificationToken:  a.EmailVerificationToken,
		EmailVerificationExpire: a.EmailVerificationExpire,
		ResetPasswordToken:      a.ResetPasswordToken,
		ResetPasswordExpire:     a.ResetPasswordExpire,
		IsActive:                a.IsActive,
		LastActiveAt:            a.LastActiveAt,
		LoginAttempts:           a.LoginAttempts,
		LockUntil:               a.LockUntil,
		Version:                 a.Version,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

func toDomain(d *accountDoc) *domain.Account {
	return &domain.Account{
		ID:                      d.ID.Hex(),
		Name:                    d.Name,
		Email:                   d.Email,
		PasswordHash:            d.PasswordHash,
		Role:                    d.Role,
		IsEmailVerified:         d.IsEmailVerified,
		EmailVerificationToken:  d.EmailVerificationToken,
		EmailVerificationExpire: d.EmailVerificationExpire,
		ResetPasswordToken:      d.ResetPasswordToken,
		ResetPasswordExpire:     d.ResetPasswordExpire,
		IsActive:                d.IsActive,
		LastActiveAt:            d.LastActiveAt,
		LoginAttempts:           d.LoginAttempts,
		LockUntil:               d.LockUntil,
		Version:                 d.Version,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}
