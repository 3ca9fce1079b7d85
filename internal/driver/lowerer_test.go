package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

func lower(t *testing.T, m *types.Model, projection []string, where *types.Node) ([]*types.Query, []types.Filter) {
	t.Helper()
	queries, flat, err := newLowerer(m, projection).lower(where)
	require.NoError(t, err)
	return queries, flat
}

func TestLowerSimpleExact(t *testing.T) {
	m := postModel()
	queries, flat := lower(t, m, nil, types.And(eq(m, "slug", "hello")))

	require.Len(t, queries, 1)
	assert.Equal(t, "post", queries[0].Kind)
	assert.Equal(t, []types.Filter{{Column: "slug", Op: "=", Value: "hello"}}, queries[0].Filters)
	assert.Equal(t, []types.Filter{{Column: "slug", Op: "=", Value: "hello"}}, flat)
}

func TestLowerNilTree(t *testing.T) {
	m := postModel()
	queries, flat := lower(t, m, nil, nil)
	require.Len(t, queries, 1)
	assert.Empty(t, queries[0].Filters)
	assert.Empty(t, flat)
}

func TestLowerPrimaryKeyRewrite(t *testing.T) {
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(eq(m, "id", int64(3))))

	require.Len(t, queries, 1)
	assert.Equal(t, []types.Filter{{Column: types.KeyColumn, Op: "=", Value: int64(3)}}, queries[0].Filters)
}

func TestLowerOperatorMapping(t *testing.T) {
	m := postModel()
	tests := []struct {
		lookup types.Lookup
		op     string
	}{
		{types.LookupExact, "="},
		{types.LookupGT, ">"},
		{types.LookupGTE, ">="},
		{types.LookupLT, "<"},
		{types.LookupLTE, "<="},
	}
	for _, tt := range tests {
		t.Run(string(tt.lookup), func(t *testing.T) {
			queries, _ := lower(t, m, nil, types.And(leaf(m, "title", tt.lookup, "x")))
			require.Len(t, queries, 1)
			assert.Equal(t, []types.Filter{{Column: "title", Op: tt.op, Value: "x"}}, queries[0].Filters)
		})
	}
}

func TestLowerSingletonListUnwrap(t *testing.T) {
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(leaf(m, "slug", types.LookupExact, []any{"hello"})))
	require.Len(t, queries, 1)
	assert.Equal(t, "hello", queries[0].Filters[0].Value)
}

func TestLowerListArgumentRejected(t *testing.T) {
	m := postModel()
	_, _, err := newLowerer(m, nil).lower(types.And(leaf(m, "slug", types.LookupExact, []any{"a", "b"})))
	assert.ErrorIs(t, err, types.ErrListArgument)
	assert.ErrorIs(t, err, types.ErrDatabase)
}

func TestLowerInExpansion(t *testing.T) {
	m := postModel()

	t.Run("fans out over the operand list", func(t *testing.T) {
		queries, flat := lower(t, m, nil, types.And(leaf(m, "id", types.LookupIn, []any{int64(1), int64(2), int64(3)})))

		require.Len(t, queries, 3)
		for i, want := range []int64{1, 2, 3} {
			assert.Equal(t, "post", queries[i].Kind)
			assert.Equal(t, []types.Filter{{Column: types.KeyColumn, Op: "=", Value: want}}, queries[i].Filters)
		}
		assert.Empty(t, flat, "IN fan-out filters stay out of the flat record")
	})

	t.Run("cartesian product over distinct IN lookups", func(t *testing.T) {
		queries, _ := lower(t, m, nil, types.And(
			leaf(m, "slug", types.LookupIn, []any{"a", "b", "c"}),
			leaf(m, "title", types.LookupIn, []any{"x", "y"}),
		))
		assert.Len(t, queries, 6)
		for _, q := range queries {
			assert.Equal(t, "post", q.Kind)
			assert.Len(t, q.Filters, 2)
		}
	})

	t.Run("filters after the fan-out land on every child", func(t *testing.T) {
		queries, flat := lower(t, m, nil, types.And(
			leaf(m, "id", types.LookupIn, []any{int64(1), int64(2)}),
			eq(m, "title", "x"),
		))
		require.Len(t, queries, 2)
		for _, q := range queries {
			assert.Contains(t, q.Filters, types.Filter{Column: "title", Op: "=", Value: "x"})
		}
		assert.Equal(t, []types.Filter{{Column: "title", Op: "=", Value: "x"}}, flat)
	})

	t.Run("typed slices work", func(t *testing.T) {
		queries, _ := lower(t, m, nil, types.And(leaf(m, "slug", types.LookupIn, []string{"a", "b"})))
		assert.Len(t, queries, 2)
	})

	t.Run("empty list fails", func(t *testing.T) {
		_, _, err := newLowerer(m, nil).lower(types.And(leaf(m, "slug", types.LookupIn, []any{})))
		assert.ErrorIs(t, err, types.ErrEmptyInLookup)
	})
}

func TestLowerIsNull(t *testing.T) {
	m := postModel()

	t.Run("true lowers to equality with nil", func(t *testing.T) {
		l := types.Leaf{Column: "title", Field: m.FieldByName("title"), Lookup: types.LookupIsNull, Annotation: true, Value: []any{true}}
		queries, _ := lower(t, m, nil, types.And(l))
		require.Len(t, queries, 1)
		assert.Equal(t, []types.Filter{{Column: "title", Op: "=", Value: nil}}, queries[0].Filters)
	})

	t.Run("false is not expressible", func(t *testing.T) {
		l := types.Leaf{Column: "title", Field: m.FieldByName("title"), Lookup: types.LookupIsNull, Annotation: false, Value: []any{false}}
		_, _, err := newLowerer(m, nil).lower(types.And(l))
		assert.ErrorIs(t, err, types.ErrUnsupportedLookup)
	})
}

func TestLowerStartsWith(t *testing.T) {
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(leaf(m, "slug", types.LookupStartsWith, "he%")))

	require.Len(t, queries, 1)
	assert.Equal(t, []types.Filter{
		{Column: "slug", Op: ">=", Value: "he"},
		{Column: "slug", Op: "<", Value: "he" + prefixUpperBound},
	}, queries[0].Filters)
}

func TestLowerRange(t *testing.T) {
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(leaf(m, "title", types.LookupRange, []any{"a", "m"})))

	require.Len(t, queries, 1)
	assert.Equal(t, []types.Filter{
		{Column: "title", Op: ">=", Value: "a"},
		{Column: "title", Op: "<=", Value: "m"},
	}, queries[0].Filters)

	t.Run("malformed bounds fail", func(t *testing.T) {
		_, _, err := newLowerer(m, nil).lower(types.And(leaf(m, "title", types.LookupRange, []any{"a"})))
		assert.ErrorIs(t, err, types.ErrDatabase)
	})
}

func TestLowerYear(t *testing.T) {
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(leaf(m, "title", types.LookupYear, []any{2026})))

	require.Len(t, queries, 1)
	require.Len(t, queries[0].Filters, 2)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, types.Filter{Column: "title", Op: ">=", Value: start}, queries[0].Filters[0])
	assert.Equal(t, types.Filter{Column: "title", Op: "<", Value: start.AddDate(1, 0, 0)}, queries[0].Filters[1])
}

func TestLowerRejectsOr(t *testing.T) {
	m := postModel()
	_, _, err := newLowerer(m, nil).lower(types.Or(eq(m, "slug", "a"), eq(m, "slug", "b")))
	assert.ErrorIs(t, err, types.ErrOnlyAndSupported)
}

func TestLowerNegation(t *testing.T) {
	m := postModel()

	t.Run("negated leaf fails", func(t *testing.T) {
		where := types.Not(eq(m, "slug", "a"))
		_, _, err := newLowerer(m, nil).lower(where)
		assert.ErrorIs(t, err, types.ErrNegatedLookup)
	})

	t.Run("negated OR descends but its leaves fail", func(t *testing.T) {
		where := &types.Node{Connector: types.ConnectorOr, Negated: true, Children: []types.Condition{eq(m, "slug", "a")}}
		_, _, err := newLowerer(m, nil).lower(where)
		assert.ErrorIs(t, err, types.ErrNegatedLookup)
	})

	t.Run("double negation cancels", func(t *testing.T) {
		inner := types.Not(eq(m, "slug", "a"))
		where := &types.Node{Connector: types.ConnectorAnd, Negated: true, Children: []types.Condition{inner}}
		queries, _ := lower(t, m, nil, where)
		require.Len(t, queries, 1)
		assert.Equal(t, []types.Filter{{Column: "slug", Op: "=", Value: "a"}}, queries[0].Filters)
	})
}

func TestLowerRejectsJoins(t *testing.T) {
	m := postModel()
	author := m.FieldByName("author").Relation
	l := types.Leaf{
		Alias:  "author",
		Column: "name",
		Field:  author.FieldByName("name"),
		Lookup: types.LookupExact,
		Value:  "x",
	}
	_, _, err := newLowerer(m, nil).lower(types.And(l))
	assert.ErrorIs(t, err, types.ErrJoinsNotSupported)
}

func TestLowerForeignKeyRewrite(t *testing.T) {
	m := postModel()
	parentPK := m.FieldByName("author").Relation.PK()

	// parent.child_set lookup: the constraint carries the parent's primary
	// key while the resolved column is the child's FK column.
	l := types.Leaf{Column: "author_id", Field: parentPK, Lookup: types.LookupExact, Value: int64(7)}
	queries, flat := lower(t, m, nil, types.And(l))

	require.Len(t, queries, 1)
	assert.Equal(t, []types.Filter{{Column: "author_id", Op: "=", Value: int64(7)}}, queries[0].Filters)
	assert.Equal(t, flat, queries[0].Filters)
}

func TestLowerUnsupportedLookup(t *testing.T) {
	m := postModel()
	_, _, err := newLowerer(m, nil).lower(types.And(leaf(m, "slug", types.LookupContains, "%x%")))
	assert.ErrorIs(t, err, types.ErrUnsupportedLookup)
}

func TestLowerProjectionGuards(t *testing.T) {
	m := docModel()

	t.Run("text column in projection drops it up front", func(t *testing.T) {
		queries, _ := lower(t, m, []string{"title", "body"}, nil)
		require.Len(t, queries, 1)
		assert.Nil(t, queries[0].Projection)
	})

	t.Run("exact lookup on a projected column clears projection", func(t *testing.T) {
		queries, _ := lower(t, m, []string{"title"}, types.And(eq(m, "title", "x")))
		require.Len(t, queries, 1)
		assert.Nil(t, queries[0].Projection)
		assert.Equal(t, []types.Filter{{Column: "title", Op: "=", Value: "x"}}, queries[0].Filters)
	})

	t.Run("inequality on a projected column keeps projection", func(t *testing.T) {
		queries, _ := lower(t, m, []string{"title"}, types.And(leaf(m, "title", types.LookupGT, "a")))
		require.Len(t, queries, 1)
		assert.Equal(t, []string{"title"}, queries[0].Projection)
	})

	t.Run("filter on an unprojected column keeps projection", func(t *testing.T) {
		queries, _ := lower(t, m, []string{"title"}, types.And(eq(m, "body", "x")))
		require.Len(t, queries, 1)
		assert.Equal(t, []string{"title"}, queries[0].Projection)
	})

	t.Run("IN on a projected column clears projection on every fan-out child", func(t *testing.T) {
		queries, _ := lower(t, m, []string{"title"}, types.And(leaf(m, "title", types.LookupIn, []any{"a", "b"})))
		require.Len(t, queries, 2)
		for _, q := range queries {
			assert.Nil(t, q.Projection)
		}
	})
}

func TestLowerKindInvariant(t *testing.T) {
	// Every emitted query targets the root kind, whatever the tree shape.
	m := postModel()
	queries, _ := lower(t, m, nil, types.And(
		leaf(m, "slug", types.LookupIn, []any{"a", "b"}),
		types.And(eq(m, "title", "x"), leaf(m, "id", types.LookupIn, []any{int64(1), int64(2)})),
	))
	require.Len(t, queries, 4)
	for _, q := range queries {
		assert.Equal(t, "post", q.Kind)
	}
}
