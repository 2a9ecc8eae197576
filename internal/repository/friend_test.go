package repository

import (
	"context"
	"regexp"
	"testing"

	"vibelet/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_GetBetweenUsersChecksBothDirections(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	rows := sqlmock.NewRows([]string{"id", "requester_id", "receiver_id", "status"}).
		AddRow(7, 2, 1, "PENDING")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "friendships" WHERE (requester_id = $1 AND receiver_id = $2) OR (requester_id = $3 AND receiver_id = $4) ORDER BY "friendships"."id" LIMIT $5`)).
		WithArgs(1, 2, 2, 1, 1).
		WillReturnRows(rows)

	friendship, err := repo.GetBetweenUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, friendship)
	assert.Equal(t, uint(2), friendship.RequesterID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_GetBetweenUsersAbsentIsNilNil(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "friendships"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	friendship, err := repo.GetBetweenUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, friendship)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_AreFriendsRequiresAccepted(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "friendships" WHERE status = $1 AND ((requester_id = $2 AND receiver_id = $3) OR (requester_id = $4 AND receiver_id = $5))`)).
		WithArgs("ACCEPTED", 1, 2, 2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	friends, err := repo.AreFriends(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, friends)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_GetPendingRequestsReceiverOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	rows := sqlmock.NewRows([]string{"id", "requester_id", "receiver_id", "status"}).
		AddRow(3, 9, 7, "PENDING")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "friendships" WHERE receiver_id = $1 AND status = $2`)).
		WithArgs(7, "PENDING").
		WillReturnRows(rows)
	// Requester and Receiver preloads (GORM runs preloads in sorted
	// order, so Receiver is queried before Requester).
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "me"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(9, "sender"))

	requests, err := repo.GetPendingRequests(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, uint(9), requests[0].RequesterID)
	assert.Equal(t, models.FriendshipStatusPending, requests[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_UpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "friendships" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), 5, models.FriendshipStatusAccepted)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
