package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/jmoiron/sqlx"
)

type metaRow struct {
	OwnerID int64  `db:"owner_id"`
	Key     string `db:"meta_key"`
	Value   string `db:"meta_value"`
}

// metaTable is the key/value child relation of one entity table.
type metaTable struct {
	conn
	table string
	owner string
}

func (m metaTable) listFor(ctx context.Context, ids []int64) (map[int64]domain.Meta, error) {
	out := make(map[int64]domain.Meta, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	in := make([]any, len(ids))
	for i, id := range ids {
		in[i] = id
	}

	sb := m.d.Flavor.NewSelectBuilder()
	sb.Select(sb.As(m.owner, "owner_id"), "meta_key", "meta_value").
		From(m.table).
		Where(sb.In(m.owner, in...))

	query, args := sb.Build()

	var rows []metaRow
	if err := sqlx.SelectContext(ctx, m.ext, &rows, query, args...); err != nil {
		return nil, m.mapErr(err)
	}

	for _, row := range rows {
		if out[row.OwnerID] == nil {
			out[row.OwnerID] = domain.Meta{}
		}
		out[row.OwnerID][row.Key] = row.Value
	}
	return out, nil
}

func (m metaTable) set(ctx context.Context, ownerID int64, key, value string) error {
	now := m.nowUnix()

	ib := m.d.Flavor.NewInsertBuilder()
	ib.InsertInto(m.table).
		Cols("created_date", "updated_date", m.owner, "meta_key", "meta_value").
		Values(now, now, ownerID, key, value)

	query, args := ib.Build()
	query += " ON CONFLICT (" + m.owner + ", meta_key) DO UPDATE SET" +
		" meta_value = excluded.meta_value, updated_date = excluded.updated_date"

	_, err := m.ext.ExecContext(ctx, query, args...)
	return m.mapErr(err)
}

func (m metaTable) delete(ctx context.Context, ownerID int64, key string) error {
	db := m.d.Flavor.NewDeleteBuilder()
	db.DeleteFrom(m.table).Where(db.Equal(m.owner, ownerID), db.Equal("meta_key", key))

	query, args := db.Build()
	_, err := m.ext.ExecContext(ctx, query, args...)
	return m.mapErr(err)
}

type metaRepo struct {
	conn
}

func (r *metaRepo) table() metaTable {
	return metaTable{conn: r.conn, table: store.TableAccountsMeta, owner: "account_id"}
}

func (r *metaRepo) List(ctx context.Context, accountID int64) (domain.Meta, error) {
	all, err := r.table().listFor(ctx, []int64{accountID})
	if err != nil {
		return nil, err
	}
	if all[accountID] == nil {
		return domain.Meta{}, nil
	}
	return all[accountID], nil
}

func (r *metaRepo) ListFor(ctx context.Context, accountIDs []int64) (map[int64]domain.Meta, error) {
	return r.table().listFor(ctx, accountIDs)
}

func (r *metaRepo) Set(ctx context.Context, accountID int64, key, value string) error {
	return r.table().set(ctx, accountID, key, value)
}

func (r *metaRepo) Delete(ctx context.Context, accountID int64, key string) error {
	return r.table().delete(ctx, accountID, key)
}

func (r *metaRepo) Values(ctx context.Context, key string) ([]string, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select("meta_value").From(store.TableAccountsMeta).Where(sb.Equal("meta_key", key))

	query, args := sb.Build()

	var values []string
	if err := sqlx.SelectContext(ctx, r.ext, &values, query, args...); err != nil {
		return nil, r.mapErr(err)
	}
	return values, nil
}
