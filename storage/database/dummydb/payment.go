package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/payment"
)

type paymentRepository struct {
	db      *paymentTable
	courses *courseTable
	users   *userTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db.payment, courses: db.course, users: db.user}
}

func (repo *paymentRepository) joined(pmt payment.Payment) payment.Payment {
	repo.users.RLock()
	if usr, ok := repo.users.table[pmt.UserID]; ok {
		pmt.UserName = usr.Name
		pmt.UserEmail = usr.Email
	}
	repo.users.RUnlock()

	repo.courses.RLock()
	if crs, ok := repo.courses.courses[pmt.CourseID]; ok {
		pmt.CourseTitle = crs.Title
	}
	repo.courses.RUnlock()
	return pmt
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	if pmt.ID == "" {
		pmt.ID = uuid.NewString()
	}
	repo.db.table[pmt.ID] = &pmt
	repo.db.Unlock()
	return repo.joined(pmt), nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	repo.db.RLock()
	orig, ok := repo.db.table[id]
	if !ok {
		repo.db.RUnlock()
		return payment.Payment{}, payment.ErrNotFound
	}
	pmt := *orig
	repo.db.RUnlock()
	return repo.joined(pmt), nil
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter, orderings ...core.DBOrdering) ([]payment.Payment, error) {
	repo.db.RLock()
	pmts := make([]payment.Payment, 0, len(repo.db.table))
	for _, pmt := range repo.db.table {
		pmts = append(pmts, *pmt)
	}
	repo.db.RUnlock()

	if filter.UserID != "" {
		var filtered []payment.Payment
		for _, p := range pmts {
			if p.UserID == filter.UserID {
				filtered = append(filtered, p)
			}
		}
		pmts = filtered
	}
	if pmts != nil && filter.CourseID != "" {
		var filtered []payment.Payment
		for _, p := range pmts {
			if p.CourseID == filter.CourseID {
				filtered = append(filtered, p)
			}
		}
		pmts = filtered
	}
	if pmts != nil && filter.Status != "" {
		var filtered []payment.Payment
		for _, p := range pmts {
			if p.Status == filter.Status {
				filtered = append(filtered, p)
			}
		}
		pmts = filtered
	}
	if pmts != nil && !filter.CreatedFrom.IsZero() {
		timeUTC := filter.CreatedFrom.UTC()
		var filtered []payment.Payment
		for _, p := range pmts {
			if !p.CreatedAt.Before(timeUTC) {
				filtered = append(filtered, p)
			}
		}
		pmts = filtered
	}
	if pmts != nil && !filter.CreatedTo.IsZero() {
		timeUTC := filter.CreatedTo.UTC()
		var filtered []payment.Payment
		for _, p := range pmts {
			if !p.CreatedAt.After(timeUTC) {
				filtered = append(filtered, p)
			}
		}
		pmts = filtered
	}

	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.After(pmts[j].CreatedAt) })
	for i := range pmts {
		pmts[i] = repo.joined(pmts[i])
	}
	return pmts, nil
}

func (repo *paymentRepository) SetPaymentStatus(ctx context.Context, id string, status payment.Status, reference string) (payment.Payment, error) {
	repo.db.Lock()
	orig, ok := repo.db.table[id]
	if !ok {
		repo.db.Unlock()
		return payment.Payment{}, payment.ErrNotFound
	}
	orig.Status = status
	if reference != "" {
		orig.Reference = reference
	}
	orig.UpdatedAt = time.Now().UTC()
	pmt := *orig
	repo.db.Unlock()
	return repo.joined(pmt), nil
}

func (repo *paymentRepository) HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, pmt := range repo.db.table {
		if pmt.UserID == userID && pmt.CourseID == courseID && pmt.Status == payment.StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}
