package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/queryx"
	"github.com/jmoiron/sqlx"
)

type accountRow struct {
	ID              int64  `db:"id"`
	CreatedDate     int64  `db:"created_date"`
	UpdatedDate     int64  `db:"updated_date"`
	SuspendedDate   int64  `db:"suspended_date"`
	UserRole        string `db:"user_role"`
	UserLogin       string `db:"user_login"`
	FirstName       string `db:"first_name"`
	LastName        string `db:"last_name"`
	PassHash        string `db:"pass_hash"`
	PassAttempts    int    `db:"pass_attempts"`
	PassAccepted    bool   `db:"pass_accepted"`
	MFAKeyEncrypted string `db:"mfa_key_encrypted"`
	MFAAttempts     int    `db:"mfa_attempts"`
	JTIEncrypted    string `db:"jti_encrypted"`
}

var accountColumns = []string{
	"id", "created_date", "updated_date", "suspended_date",
	"user_role", "user_login", "first_name", "last_name",
	"pass_hash", "pass_attempts", "pass_accepted",
	"mfa_key_encrypted", "mfa_attempts", "jti_encrypted",
}

func mapAccount(r accountRow) domain.Account {
	return domain.Account{
		ID:              r.ID,
		CreatedDate:     fromUnix(r.CreatedDate),
		UpdatedDate:     fromUnix(r.UpdatedDate),
		SuspendedDate:   fromUnix(r.SuspendedDate),
		Role:            domain.Role(r.UserRole),
		Login:           r.UserLogin,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		PassHash:        r.PassHash,
		PassAttempts:    r.PassAttempts,
		PassAccepted:    r.PassAccepted,
		MFAKeyEncrypted: r.MFAKeyEncrypted,
		MFAAttempts:     r.MFAAttempts,
		JTIEncrypted:    r.JTIEncrypted,
	}
}

type accountsRepo struct {
	conn
}

func (r *accountsRepo) meta() *metaRepo { return &metaRepo{conn: r.conn} }

func (r *accountsRepo) Insert(ctx context.Context, a *domain.Account) error {
	now := r.nowUnix()

	ib := r.d.Flavor.NewInsertBuilder()
	ib.InsertInto(store.TableAccounts).
		Cols(accountColumns[1:]...).
		Values(
			now, now, toUnix(a.SuspendedDate),
			string(a.Role), a.Login, a.FirstName, a.LastName,
			a.PassHash, a.PassAttempts, a.PassAccepted,
			a.MFAKeyEncrypted, a.MFAAttempts, a.JTIEncrypted,
		)

	query, args := ib.Build()
	query += " RETURNING id"

	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, query, args...); err != nil {
		return r.mapErr(err)
	}

	a.ID = id
	a.CreatedDate = fromUnix(now)
	a.UpdatedDate = fromUnix(now)
	return nil
}

func (r *accountsRepo) Update(ctx context.Context, a *domain.Account) error {
	now := r.nowUnix()

	ub := r.d.Flavor.NewUpdateBuilder()
	ub.Update(store.TableAccounts).
		Set(
			ub.Assign("updated_date", now),
			ub.Assign("suspended_date", toUnix(a.SuspendedDate)),
			ub.Assign("user_role", string(a.Role)),
			ub.Assign("user_login", a.Login),
			ub.Assign("first_name", a.FirstName),
			ub.Assign("last_name", a.LastName),
			ub.Assign("pass_hash", a.PassHash),
			ub.Assign("pass_attempts", a.PassAttempts),
			ub.Assign("pass_accepted", a.PassAccepted),
			ub.Assign("mfa_key_encrypted", a.MFAKeyEncrypted),
			ub.Assign("mfa_attempts", a.MFAAttempts),
			ub.Assign("jti_encrypted", a.JTIEncrypted),
		).
		Where(ub.Equal("id", a.ID))

	query, args := ub.Build()
	if err := r.execAffecting(ctx, query, args...); err != nil {
		return err
	}

	a.UpdatedDate = fromUnix(now)
	return nil
}

func (r *accountsRepo) Delete(ctx context.Context, id int64) error {
	db := r.d.Flavor.NewDeleteBuilder()
	db.DeleteFrom(store.TableAccounts).Where(db.Equal("id", id))

	query, args := db.Build()
	return r.execAffecting(ctx, query, args...)
}

func (r *accountsRepo) getBy(ctx context.Context, column string, value any) (domain.Account, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select(accountColumns...).From(store.TableAccounts).Where(sb.Equal(column, value))

	query, args := sb.Build()

	var row accountRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Account{}, r.mapErr(err)
	}

	a := mapAccount(row)
	meta, err := r.meta().List(ctx, a.ID)
	if err != nil {
		return domain.Account{}, err
	}
	a.Meta = meta
	return a, nil
}

func (r *accountsRepo) Get(ctx context.Context, id int64) (domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *accountsRepo) GetByLogin(ctx context.Context, login string) (domain.Account, error) {
	return r.getBy(ctx, "user_login", login)
}

func (r *accountsRepo) Select(ctx context.Context, q queryx.Query) ([]domain.Account, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select(accountColumns...).From(store.TableAccounts)
	q.Apply(sb)

	query, args := sb.Build()

	var rows []accountRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, args...); err != nil {
		return nil, r.mapErr(err)
	}

	out := make([]domain.Account, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAccount(row))
		ids = append(ids, row.ID)
	}

	metas, err := r.meta().ListFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Meta = metas[out[i].ID]
	}

	return out, nil
}

func (r *accountsRepo) Count(ctx context.Context, q queryx.Query) (int, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select("COUNT(*)").From(store.TableAccounts)
	q.ApplyWhere(sb)

	query, args := sb.Build()

	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, query, args...); err != nil {
		return 0, r.mapErr(err)
	}
	return n, nil
}

func (r *accountsRepo) Exists(ctx context.Context, q queryx.Query) (bool, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select("id").From(store.TableAccounts)
	q.ApplyWhere(sb)
	sb.Limit(1)

	query, args := sb.Build()

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.ext, &ids, query, args...); err != nil {
		return false, r.mapErr(err)
	}
	return len(ids) > 0, nil
}
