//go:build integration

package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/institute-portal/internal/enrollment"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, uri, "institute_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestRecordEnrollment_Integration(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	require.NoError(t, s.RecordEnrollment(ctx, userID, "data-analytics"))
	require.NoError(t, s.RecordEnrollment(ctx, userID, "data-analytics"))
	require.NoError(t, s.RecordEnrollment(ctx, userID, "digital-marketing"))

	var doc struct {
		EnrolledCourseIDs []string  `bson:"enrolledCourseIds"`
		LastEnrolledAt    time.Time `bson:"lastEnrolledAt"`
	}
	err := s.db.Collection(UsersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"data-analytics", "digital-marketing"}, doc.EnrolledCourseIDs)
	assert.False(t, doc.LastEnrolledAt.IsZero())
}

func TestRecordMembership_Integration(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	m := enrollment.Membership{
		ID:        uuid.NewString(),
		UserID:    "user-" + uuid.NewString(),
		OrderID:   "order_test",
		PaymentID: "pay_test",
		Amount:    4999900,
		Currency:  "INR",
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, s.RecordMembership(ctx, m))

	var user struct {
		IsMember bool `bson:"isMember"`
	}
	require.NoError(t, s.db.Collection(UsersCollection).FindOne(ctx, bson.M{"_id": m.UserID}).Decode(&user))
	assert.True(t, user.IsMember)

	count, err := s.db.Collection(MembershipsCollection).CountDocuments(ctx, bson.M{"_id": m.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
