// Package docstore records enrollments and memberships in MongoDB.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathan/institute-portal/internal/enrollment"
)

// Collection names
const (
	UsersCollection       = "users"
	MembershipsCollection = "memberships"
)

// MongoDB error codes that mean the caller is not allowed to write.
var permissionCodes = []int{
	13,   // Unauthorized
	18,   // AuthenticationFailed
	8000, // Atlas: user is not allowed to do action
}

// Store is a MongoDB-backed enrollment.Recorder.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies it with a ping and selects database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// RecordEnrollment merge-writes the user document: the course joins enrolledCourseIds and
// lastEnrolledAt is set to server time. The document is created if missing.
func (s *Store) RecordEnrollment(ctx context.Context, userID, courseID string) error {
	_, err := s.db.Collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		enrollmentUpdate(courseID),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return mapError(userID, fmt.Errorf("failed to record enrollment: %w", err))
	}
	return nil
}

// RecordMembership inserts the membership and flags the user document in one transaction.
// Transactions need a replica set or sharded cluster.
func (s *Store) RecordMembership(ctx context.Context, m enrollment.Membership) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongodb session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := s.db.Collection(MembershipsCollection).InsertOne(sc, m); err != nil {
			return nil, err
		}
		_, err := s.db.Collection(UsersCollection).UpdateOne(sc,
			bson.M{"_id": m.UserID},
			membershipUpdate(m),
			options.Update().SetUpsert(true),
		)
		return nil, err
	})
	if err != nil {
		return mapError(m.UserID, fmt.Errorf("failed to record membership: %w", err))
	}
	return nil
}

func enrollmentUpdate(courseID string) bson.M {
	return bson.M{
		"$addToSet":    bson.M{"enrolledCourseIds": courseID},
		"$currentDate": bson.M{"lastEnrolledAt": true},
	}
}

func membershipUpdate(m enrollment.Membership) bson.M {
	return bson.M{
		"$set":         bson.M{"isMember": true, "membershipId": m.ID},
		"$currentDate": bson.M{"memberSince": true},
	}
}

// mapError turns authorization failures into *enrollment.PermissionError.
func mapError(userID string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range permissionCodes {
			if se.HasErrorCode(code) {
				return &enrollment.PermissionError{UserID: userID, Cause: err}
			}
		}
	}
	return err
}
