package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/jmoiron/sqlx"
)

type collectionRow struct {
	ID              int64  `db:"id"`
	CreatedDate     int64  `db:"created_date"`
	UpdatedDate     int64  `db:"updated_date"`
	AccountID       int64  `db:"account_id"`
	CollectionName  string `db:"collection_name"`
	MediafilesCount int    `db:"mediafiles_count"`
}

type collectionsRepo struct {
	conn
}

func (r *collectionsRepo) metaTable() metaTable {
	return metaTable{conn: r.conn, table: store.TableCollectionsMeta, owner: "collection_id"}
}

func (r *collectionsRepo) Insert(ctx context.Context, c *domain.Collection) error {
	now := r.nowUnix()

	ib := r.d.Flavor.NewInsertBuilder()
	ib.InsertInto(store.TableCollections).
		Cols("created_date", "updated_date", "account_id", "collection_name", "mediafiles_count").
		Values(now, now, c.AccountID, c.Name, c.MediafilesCount)

	query, args := ib.Build()
	query += " RETURNING id"

	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, query, args...); err != nil {
		return r.mapErr(err)
	}

	c.ID = id
	c.CreatedDate = fromUnix(now)
	c.UpdatedDate = fromUnix(now)

	for key, value := range c.Meta {
		if !domain.MetaAllowed(c, key) {
			continue
		}
		if err := r.metaTable().set(ctx, id, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *collectionsRepo) Get(ctx context.Context, id int64) (domain.Collection, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select("id", "created_date", "updated_date", "account_id", "collection_name", "mediafiles_count").
		From(store.TableCollections).
		Where(sb.Equal("id", id))

	query, args := sb.Build()

	var row collectionRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Collection{}, r.mapErr(err)
	}

	metas, err := r.metaTable().listFor(ctx, []int64{id})
	if err != nil {
		return domain.Collection{}, err
	}

	return domain.Collection{
		ID:              row.ID,
		CreatedDate:     fromUnix(row.CreatedDate),
		UpdatedDate:     fromUnix(row.UpdatedDate),
		AccountID:       row.AccountID,
		Name:            row.CollectionName,
		MediafilesCount: row.MediafilesCount,
		Meta:            metas[id],
	}, nil
}

func (r *collectionsRepo) CountByAccount(ctx context.Context, accountID int64) (int, error) {
	sb := r.d.Flavor.NewSelectBuilder()
	sb.Select("COUNT(*)").From(store.TableCollections).Where(sb.Equal("account_id", accountID))

	query, args := sb.Build()

	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, query, args...); err != nil {
		return 0, r.mapErr(err)
	}
	return n, nil
}
