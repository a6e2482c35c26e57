package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var postColNames = []string{"id", "slug", "title", "excerpt", "body", "published", "published_at", "created_at", "updated_at"}

func postRow(rows *pgxmock.Rows, id uuid.UUID, slug string) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(id, slug, "Title", "Excerpt", "# body", true, &now, now, now)
}

func TestPostRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostRepo(db)
	ctx := context.Background()
	p := &model.Post{ID: uuid.Must(uuid.NewV4()), Slug: "hello", Title: "Hello", Body: "x"}
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO posts \(id, slug, title, excerpt, body\)`).
		WithArgs(p.ID, p.Slug, p.Title, p.Excerpt, p.Body).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, r.Create(ctx, p))

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(p.ID, p.Slug, p.Title, p.Excerpt, p.Body).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, p), errs.ErrAlreadyExists)
}

func TestPostRepo_ListPublished_Paging(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostRepo(db)
	ctx := context.Background()

	rows := pgxmock.NewRows(postColNames)
	postRow(rows, uuid.Must(uuid.NewV4()), "one")
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).WithArgs(20, 40).WillReturnRows(rows)

	got, err := r.ListPublished(ctx, 20, 40)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "one", got[0].Slug)
	require.NotNil(t, got[0].PublishedAt)
}

func TestPostRepo_GetPublishedBySlug(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`WHERE slug=\$1 AND published`).
		WithArgs("one").
		WillReturnRows(postRow(pgxmock.NewRows(postColNames), id, "one"))
	p, err := r.GetPublishedBySlug(ctx, "one")
	require.NoError(t, err)
	require.Equal(t, id, p.ID)

	mock.ExpectQuery(`WHERE slug=\$1 AND published`).
		WithArgs("draft").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetPublishedBySlug(ctx, "draft")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPostRepo_SetPublished_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	// published_at survives an unpublish/publish cycle.
	mock.ExpectExec(`COALESCE\(published_at, now\(\)\)`).
		WithArgs(id, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetPublished(ctx, id, true))

	mock.ExpectExec(`UPDATE posts`).
		WithArgs(id, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetPublished(ctx, id, false), errs.ErrNotFound)

	mock.ExpectExec(`DELETE FROM posts WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, id))
	require.NoError(t, mock.ExpectationsWereMet())
}
