package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/repositories"
)

var templateRowColumns = []string{"id", "name", "owner_id", "body", "kind", "is_default", "created_at", "updated_at"}

func TestTemplateRepository_GetByID(t *testing.T) {
	logger := zap.NewNop()
	id := uuid.New()
	now := time.Now()

	t.Run("found with owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM prompt_templates WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(templateRowColumns).
				AddRow(id, "survey", "key-a", "{{questions}}", "coherent", false, now, now))

		repo := NewTemplateRepository(db, logger)
		tmpl, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, tmpl.ID)
		assert.Equal(t, models.TemplateKindCoherent, tmpl.Kind)
		require.NotNil(t, tmpl.OwnerID)
		assert.Equal(t, "key-a", *tmpl.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("public template has nil owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM prompt_templates").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(templateRowColumns).
				AddRow(id, "names", nil, "{{count}} names", "independent", true, now, now))

		tmpl, err := NewTemplateRepository(db, logger).GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, tmpl.OwnerID)
		assert.True(t, tmpl.IsPublic())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM prompt_templates").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(templateRowColumns))

		_, err = NewTemplateRepository(db, logger).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM prompt_templates").
			WithArgs(id).
			WillReturnError(errors.New("connection reset"))

		_, err = NewTemplateRepository(db, logger).GetByID(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestTemplateRepository_ListForOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id IS NULL OR owner_id = $1")).
		WithArgs("key-a").
		WillReturnRows(sqlmock.NewRows(templateRowColumns).
			AddRow(uuid.New(), "default", nil, "body", "independent", true, now, now).
			AddRow(uuid.New(), "mine", "key-a", "body", "coherent", false, now, now))

	templates, err := NewTemplateRepository(db, zap.NewNop()).ListForOwner(context.Background(), "key-a")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.True(t, templates[0].IsDefault)
	assert.Equal(t, "mine", templates[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	owner := "key-a"
	tmpl := &models.PromptTemplate{Name: "mine", OwnerID: &owner, Body: "{{context}}", Kind: models.TemplateKindCoherent}

	mock.ExpectExec("INSERT INTO prompt_templates").
		WithArgs(sqlmock.AnyArg(), "mine", &owner, "{{context}}", models.TemplateKindCoherent, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewTemplateRepository(db, zap.NewNop()).Create(context.Background(), tmpl)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tmpl.ID)
	assert.False(t, tmpl.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
