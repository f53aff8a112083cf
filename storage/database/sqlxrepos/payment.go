package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/payment"
)

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

type paymentRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	CourseID    string    `db:"course_id"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string    `db:"currency"`
	Status      string    `db:"status"`
	Reference   string    `db:"reference"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	UserName    string    `db:"user_name"`
	UserEmail   string    `db:"user_email"`
	CourseTitle string    `db:"course_title"`
}

func (r paymentRow) toPayment() payment.Payment {
	return payment.Payment{
		ID:          r.ID,
		UserID:      r.UserID,
		CourseID:    r.CourseID,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Status:      payment.Status(r.Status),
		Reference:   r.Reference,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserName:    r.UserName,
		UserEmail:   r.UserEmail,
		CourseTitle: r.CourseTitle,
	}
}

func trapPaymentNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return payment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const paymentCols = `
	p.*, u.name AS user_name, u.email AS user_email, c.title AS course_title`

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	if pmt.ID == "" {
		pmt.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO payments (id, user_id, course_id, amount_cents, currency, status, reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		pmt.ID, pmt.UserID, pmt.CourseID, pmt.AmountCents, pmt.Currency,
		pmt.Status, pmt.Reference, pmt.CreatedAt.UTC(), pmt.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "creating payment")
	}
	return repo.GetPaymentByID(ctx, pmt.ID)
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	const q = `
		SELECT ` + paymentCols + `
		FROM payments p
		JOIN users u ON u.id = p.user_id
		JOIN courses c ON c.id = p.course_id
		WHERE p.id = $1`
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return payment.Payment{}, trapPaymentNoRowsErr(err, "finding payment by ID")
	}
	return row.toPayment(), nil
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter, orderings ...core.DBOrdering) ([]payment.Payment, error) {
	qb := psql.Select("p.*", "u.name AS user_name", "u.email AS user_email", "c.title AS course_title").
		From("payments p").
		Join("users u ON u.id = p.user_id").
		Join("courses c ON c.id = p.course_id")

	if filter.UserID != "" {
		qb = qb.Where(sq.Eq{"p.user_id": filter.UserID})
	}
	if filter.CourseID != "" {
		qb = qb.Where(sq.Eq{"p.course_id": filter.CourseID})
	}
	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"p.status": filter.Status})
	}
	if !filter.CreatedFrom.IsZero() {
		qb = qb.Where(sq.GtOrEq{"p.created_at": filter.CreatedFrom.UTC()})
	}
	if !filter.CreatedTo.IsZero() {
		qb = qb.Where(sq.LtOrEq{"p.created_at": filter.CreatedTo.UTC()})
	}
	if len(orderings) == 0 {
		qb = qb.OrderBy("p.created_at DESC")
	}
	for _, ord := range orderings {
		qb = qb.OrderBy("p." + ord.String())
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []paymentRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering payments")
	}
	pmts := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		pmts = append(pmts, r.toPayment())
	}
	return pmts, nil
}

func (repo *paymentRepository) SetPaymentStatus(ctx context.Context, id string, status payment.Status, reference string) (payment.Payment, error) {
	const q = `
		UPDATE payments SET
			status = $1,
			reference = CASE WHEN $2 = '' THEN reference ELSE $2 END,
			updated_at = $3
		WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, q, status, reference, time.Now().UTC(), id)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "setting payment status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPaymentByID(ctx, id)
}

func (repo *paymentRepository) HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error) {
	const q = `
		SELECT COUNT(id) FROM payments
		WHERE user_id = $1 AND course_id = $2 AND status = $3`
	var count int
	if err := repo.db.GetContext(ctx, &count, q, userID, courseID, payment.StatusCompleted); err != nil {
		return false, errors.Wrap(err, "checking completed payment")
	}
	return count > 0, nil
}
