package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/spraicheux/offerflow/internal/domain"
)

// failingDBTX fails the test if any query reaches the database. Used to
// prove validation happens before SQL is executed.
type failingDBTX struct {
	t *testing.T
}

func (f *failingDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.t.Fatal("unexpected ExecContext call")
	return nil, nil
}

func (f *failingDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	f.t.Fatal("unexpected PrepareContext call")
	return nil, nil
}

func (f *failingDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	f.t.Fatal("unexpected QueryContext call")
	return nil, nil
}

func (f *failingDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	f.t.Fatal("unexpected QueryRowContext call")
	return nil
}

func TestSubmissionStoreCreateRejectsInvalidSubmission(t *testing.T) {
	s := NewPostgresSubmissionStore(&failingDBTX{t: t}, nil)

	invalid := &domain.Submission{
		ID:            uuid.New(),
		SourceChannel: "carrier_pigeon",
	}

	err := s.Create(context.Background(), invalid)
	assert.ErrorIs(t, err, domain.ErrInvalidSourceChannel)
}

func TestSubmissionStoreUpdateStatusRejectsInvalidStatus(t *testing.T) {
	s := NewPostgresSubmissionStore(&failingDBTX{t: t}, nil)

	err := s.UpdateStatus(context.Background(), uuid.New(), domain.SubmissionStatus("exploded"))
	assert.ErrorIs(t, err, domain.ErrInvalidSubmissionStatus)
}

func TestOfferStoreCreateManyRejectsInvalidItem(t *testing.T) {
	s := NewPostgresOfferStore(&failingDBTX{t: t}, nil)

	invalid := &domain.OfferItem{ProductName: "No UID Lager"}
	err := s.CreateMany(context.Background(), uuid.New(), []*domain.OfferItem{invalid})
	assert.ErrorIs(t, err, domain.ErrEmptyOfferUID)
}

func TestOfferStoreCreateManyEmptySliceIsNoop(t *testing.T) {
	s := NewPostgresOfferStore(&failingDBTX{t: t}, nil)
	assert.NoError(t, s.CreateMany(context.Background(), uuid.New(), nil))
}

func TestNewStoresPanicOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresSubmissionStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresOfferStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresClientStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresTaskStore(nil) })
}
