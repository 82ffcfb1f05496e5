package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/cryptox"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator = "0x1111111111111111111111111111111111111111"

var listColumns = []string{"id", "title", "author", "abstract", "category", "price",
	"findings_ciphertext", "findings_nonce", "payee_address", "date", "token_uri", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *cryptox.Sealer) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sealer, err := cryptox.NewSealer("pass", "salt")
	require.NoError(t, err)

	return NewPostgresRepository(db, Options{OperatorAddress: operator, Sealer: sealer}), mock, sealer
}

func TestList_NewestFirstWithDefaults(t *testing.T) {
	repo, mock, sealer := newRepoWithMock(t)

	ct1, n1 := sealer.Seal("first findings")
	ct2, n2 := sealer.Seal("second findings")
	now := time.Now()

	rows := sqlmock.NewRows(listColumns).
		AddRow("b", "newer", "lab", "abs", "Chemistry", "0.5", ct2, n2, "0x2222222222222222222222222222222222222222", "d", "", now).
		AddRow("a", "older", "", "abs", nil, nil, ct1, n1, nil, "d", "", now.Add(-time.Hour))

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*title.*FROM\s+experiments\s+ORDER\s+BY\s+created_at\s+DESC\s*$`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, models.CategoryChemistry, got[0].Category)
	assert.Equal(t, "second findings", got[0].Findings)

	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, models.CategoryPhysics, got[1].Category)
	assert.Equal(t, "0.0001", got[1].Price.String())
	assert.Equal(t, operator, got[1].PayeeAddress)
	assert.Equal(t, "0x1111...1111", got[1].Author)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+experiments`).WillReturnRows(sqlmock.NewRows(listColumns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+experiments`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestList_TamperedFindings(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	rows := sqlmock.NewRows(listColumns).
		AddRow("a", "t", "", "abs", nil, nil, []byte("garbage"), make([]byte, 12), nil, "", "", time.Now())
	mock.ExpectQuery(`FROM\s+experiments`).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+experiments.*RETURNING\s+created_at\s*$`).
		WithArgs(sqlmock.AnyArg(), "t", "0x1111...1111", "abs", "Physics", "0.0001",
			sqlmock.AnyArg(), sqlmock.AnyArg(), operator, "1/2/2024", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	rec, err := repo.Create(context.Background(), models.Draft{Title: "t", Abstract: "abs", Findings: "secret", Date: "1/2/2024"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, "secret", rec.Findings)
	require.NoError(t, mock.ExpectationsWereMet())

}

func TestCreate_ValidationBeforeDB(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	_, err := repo.Create(context.Background(), models.Draft{Title: "t", Abstract: "a", Findings: "f", Category: "Alchemy"})
	require.ErrorIs(t, err, common.ErrInvalidCategory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT\s+INTO\s+experiments`).WillReturnError(sql.ErrConnDone)

	_, err := repo.Create(context.Background(), models.Draft{Title: "t", Abstract: "a", Findings: "f"})
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestDelete(t *testing.T) {
	const id = "6f1c2b8e-1d2a-4c3b-9a8e-7f6e5d4c3b2a"

	t.Run("deleted", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(`^DELETE\s+FROM\s+experiments\s+WHERE\s+id\s*=\s*\$1$`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), id))
	})

	t.Run("no rows", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(`DELETE`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.Delete(context.Background(), id), common.ErrorNotFound)
	})

	t.Run("not a uuid", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		require.ErrorIs(t, repo.Delete(context.Background(), "nope"), common.ErrorNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(`DELETE`).WithArgs(id).WillReturnError(errors.New("boom"))
		err := repo.Delete(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}
