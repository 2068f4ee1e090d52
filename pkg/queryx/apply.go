package queryx

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// ApplyWhere adds the compiled predicates to sb. Ordering and pagination are
// left alone, which is what count and exists queries want.
func (q Query) ApplyWhere(sb *sqlbuilder.SelectBuilder) {
	if len(q.Where) == 0 {
		return
	}

	exprs := make([]string, 0, len(q.Where))
	for _, c := range q.Where {
		exprs = append(exprs, q.expr(sb, c))
	}
	sb.Where(exprs...)
}

// Apply adds predicates, ordering and pagination to sb.
func (q Query) Apply(sb *sqlbuilder.SelectBuilder) {
	q.ApplyWhere(sb)

	if q.schema != nil {
		if col, ok := q.schema.Fields[q.OrderBy]; ok {
			sb.OrderBy(col.Expr)
			if q.Desc {
				sb.Desc()
			} else {
				sb.Asc()
			}
		}
	}

	if q.Limit > 0 {
		sb.Limit(q.Limit)
	}
	if q.Offset > 0 {
		sb.Offset(q.Offset)
	}
}

func (q Query) expr(sb *sqlbuilder.SelectBuilder, c Cond) string {
	if c.Column.Meta == "" {
		return compare(sb, c.Column.Expr, c)
	}

	// Meta filters match owners that have the key with a matching value.
	m := q.schema.Meta
	sub := sqlbuilder.NewSelectBuilder()
	sub.Select(m.OwnerColumn).From(m.Table).Where(
		sub.Equal(m.KeyColumn, c.Column.Meta),
		compare(sub, m.ValueColumn, c),
	)
	return sb.In(q.schema.primaryKey(), sub)
}

func compare(sb *sqlbuilder.SelectBuilder, target string, c Cond) string {
	v := c.Values[0]

	switch c.Op {
	case OpNot:
		return sb.NotEqual(target, v)
	case OpGt:
		return sb.GreaterThan(target, v)
	case OpGte:
		return sb.GreaterEqualThan(target, v)
	case OpLt:
		return sb.LessThan(target, v)
	case OpLte:
		return sb.LessEqualThan(target, v)
	case OpIn:
		return sb.In(target, c.Values...)
	case OpLike:
		return sb.Like(target, "%"+v.(string)+"%")
	case OpILike:
		return sb.Like("LOWER("+target+")", "%"+strings.ToLower(v.(string))+"%")
	default:
		return sb.Equal(target, v)
	}
}
