package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := &MongoRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.Create(context.Background(), testUser()))
	})

	mt.Run("create duplicate key", func(mt *mtest.T) {
		repo := &MongoRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: users_email_unique",
		}))

		err := repo.Create(context.Background(), testUser())
		require.ErrorIs(mt, err, apperr.ErrConflict)
	})

	mt.Run("create command failure", func(mt *mtest.T) {
		repo := &MongoRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.Create(context.Background(), testUser())
		require.ErrorIs(mt, err, apperr.ErrStoreUnavailable)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := &MongoRepository{coll: mt.Coll}
		u := testUser()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: u.ID},
			{Key: "username", Value: u.Username},
			{Key: "email", Value: u.Email},
			{Key: "password_hash", Value: u.PasswordHash},
			{Key: "role", Value: "user"},
			{Key: "created_at", Value: u.CreatedAt},
		}))

		got, err := repo.FindByEmail(context.Background(), u.Email)
		require.NoError(mt, err)
		assert.Equal(mt, u.ID, got.ID)
		assert.Equal(mt, u.Email, got.Email)
		assert.Equal(mt, RoleUser, got.Role)
		assert.True(mt, u.CreatedAt.Equal(got.CreatedAt))
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		repo := &MongoRepository{coll: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), "missing@example.com")
		require.ErrorIs(mt, err, ErrUserNotFound)
	})
}

func TestMongoDuplicateKeyDetection(t *testing.T) {
	err := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "dup"}}}
	assert.True(t, mongo.IsDuplicateKeyError(err))
}
