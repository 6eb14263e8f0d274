package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

func setupRepoTestDB(t *testing.T, modelTypes ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(modelTypes...))
	return db
}

func TestAnnotationRepositoryScopedListing(t *testing.T) {
	db := setupRepoTestDB(t, &models.Annotation{})
	repo := NewAnnotationRepository(db)
	ctx := context.Background()

	seed := []models.Annotation{
		{AssignmentID: 1, UserID: 10, Text: "later span", Verb: "Amplifies", StartOffset: 40, EndOffset: 50},
		{AssignmentID: 1, UserID: 10, Text: "early span", Verb: "Juxtaposes", StartOffset: 5, EndOffset: 15},
		{AssignmentID: 1, UserID: 11, Text: "other student", Verb: "Refutes", StartOffset: 8, EndOffset: 20},
		{AssignmentID: 2, UserID: 10, Text: "other assignment", Verb: "Frames", StartOffset: 0, EndOffset: 4},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	own, err := repo.ListByOwner(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, own, 2)
	require.Equal(t, "early span", own[0].Text, "owner listing is ordered by start offset")
	require.Equal(t, "later span", own[1].Text)

	all, err := repo.ListByAssignment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3, "heatmap listing spans all students")

	count, err := repo.CountByAssignment(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestAnnotationRepositoryUpdateAndDelete(t *testing.T) {
	db := setupRepoTestDB(t, &models.Annotation{})
	repo := NewAnnotationRepository(db)
	ctx := context.Background()

	annotation := models.Annotation{AssignmentID: 1, UserID: 10, Text: "span", Verb: "Evokes", StartOffset: 0, EndOffset: 4}
	require.NoError(t, repo.Create(ctx, &annotation))

	annotation.Verb = "Laments"
	annotation.Commentary = "shifts the mood"
	require.NoError(t, repo.Update(ctx, &annotation))

	reloaded, err := repo.GetByID(ctx, annotation.ID)
	require.NoError(t, err)
	require.Equal(t, "Laments", reloaded.Verb)
	require.Equal(t, "shifts the mood", reloaded.Commentary)

	require.NoError(t, repo.Delete(ctx, annotation.ID))
	require.ErrorIs(t, repo.Delete(ctx, annotation.ID), gorm.ErrRecordNotFound)

	_, err = repo.GetByID(ctx, annotation.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
