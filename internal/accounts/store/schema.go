package store

import (
	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/queryx"
)

// Table names shared by the SQL drivers and their migrations.
const (
	TableAccounts        = "accounts"
	TableAccountsMeta    = "accounts_meta"
	TableCollections     = "collections"
	TableCollectionsMeta = "collections_meta"
)

// AccountSchema lists what account searches may filter and order on.
// Secrets, hashes and counters are deliberately absent.
var AccountSchema = &queryx.Schema{
	Table:        TableAccounts,
	PrimaryKey:   "id",
	DefaultOrder: "id",
	MaxLimit:     200,
	Fields: map[string]queryx.Column{
		"id":             {Expr: "id", Kind: queryx.KindInt, Sortable: true},
		"created_date":   {Expr: "created_date", Kind: queryx.KindInt, Sortable: true},
		"updated_date":   {Expr: "updated_date", Kind: queryx.KindInt, Sortable: true},
		"suspended_date": {Expr: "suspended_date", Kind: queryx.KindInt},
		"user_role":      {Expr: "user_role", Enum: domain.RoleNames()},
		"user_login":     {Expr: "user_login", Sortable: true},
		"first_name":     {Expr: "first_name", Sortable: true},
		"last_name":      {Expr: "last_name", Sortable: true},
		"full_name":      {Expr: "first_name || ' ' || last_name"},
		"user_summary":   {Meta: domain.MetaSummary},
		"user_contacts":  {Meta: domain.MetaContacts},
	},
	Meta: &queryx.MetaRelation{
		Table:       TableAccountsMeta,
		OwnerColumn: "account_id",
		KeyColumn:   "meta_key",
		ValueColumn: "meta_value",
	},
}
