package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"shepherd/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedName string
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).
					AddRow(1, "Pastor Ruth", "ruth@example.com", "leader")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedName: "Pastor Ruth",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection timeout"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.Nil(t, user)
				assert.True(t, models.IsCode(err, tt.expectedCode), "got %v", err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.expectedName, user.Name)
				assert.Equal(t, models.RoleLeader, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleWorshiper}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "a@example.com", Role: models.RoleLeader})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

func TestUserRepository_RoleIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "grace", models.RoleWorshiper)

	err := db.Model(u).Update("role", models.RoleLeader).Error
	assert.ErrorIs(t, err, models.ErrRoleImmutable)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	assert.Equal(t, models.RoleWorshiper, reloaded.Role)
}

func TestUserRepository_ListLeaders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	b := createUser(t, db, "bethany", models.RoleLeader)
	a := createUser(t, db, "abigail", models.RoleLeader)
	createUser(t, db, "walter", models.RoleWorshiper)

	leaders, err := repo.ListLeaders(ctx)
	require.NoError(t, err)
	require.Len(t, leaders, 2)
	assert.Equal(t, a.ID, leaders[0].ID)
	assert.Equal(t, b.ID, leaders[1].ID)
}
