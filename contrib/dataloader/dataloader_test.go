package dataloader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row is a keyed test row.
type row struct {
	Parent int
	ID     int
	Name   string
}

func parentOf(r row) int  { return r.Parent }
func nameOf(r row) string { return r.Name }

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	t.Run("preserves row order", func(t *testing.T) {
		t.Parallel()
		rows := []row{
			{Parent: 1, ID: 1, Name: "For Those About To Rock"},
			{Parent: 12, ID: 149, Name: "Money"},
			{Parent: 1, ID: 6, Name: "Put The Finger On You"},
		}
		grouped := GroupByKey(rows, parentOf, nameOf)
		require.Len(t, grouped, 2)
		assert.Equal(t, []string{"For Those About To Rock", "Put The Finger On You"}, grouped[1])
		assert.Equal(t, []string{"Money"}, grouped[12])
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		grouped := GroupByKey[int, row, string](nil, parentOf, nameOf)
		assert.Empty(t, grouped)
	})
}

func TestOrderGroupsByKeys(t *testing.T) {
	t.Parallel()

	groups := map[int][]string{
		1:  {"a", "b"},
		12: {"c"},
	}
	ordered := OrderGroupsByKeys([]int{12, 99, 1, 12}, groups)
	require.Len(t, ordered, 4)
	assert.Equal(t, []string{"c"}, ordered[0])
	assert.NotNil(t, ordered[1])
	assert.Empty(t, ordered[1])
	assert.Equal(t, []string{"a", "b"}, ordered[2])
	assert.Equal(t, []string{"c"}, ordered[3])
}

func TestOrderSingleByKeys(t *testing.T) {
	t.Parallel()

	groups := map[int][]string{
		1: {"AC/DC"},
		2: {"Accept", "Accept"},
	}
	errFn := func(key, count int) error {
		return fmt.Errorf("key %d: %d results", key, count)
	}
	values, errs := OrderSingleByKeys([]int{1, 2, 3}, groups, errFn)
	require.Len(t, values, 3)
	require.Len(t, errs, 3)

	assert.Equal(t, "AC/DC", values[0])
	assert.NoError(t, errs[0])

	assert.Empty(t, values[1])
	assert.EqualError(t, errs[1], "key 2: 2 results")

	assert.Empty(t, values[2])
	assert.EqualError(t, errs[2], "key 3: 0 results")
}

func TestResults(t *testing.T) {
	t.Parallel()

	t.Run("with errors", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		results := Results([]int{1, 0, 3}, []error{nil, boom, nil})
		require.Len(t, results, 3)
		assert.Equal(t, 1, results[0].Data)
		assert.NoError(t, results[0].Error)
		assert.ErrorIs(t, results[1].Error, boom)
		assert.Equal(t, 3, results[2].Data)
	})

	t.Run("nil errors", func(t *testing.T) {
		t.Parallel()
		results := Results([]string{"a", "b"}, nil)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.NoError(t, r.Error)
		}
	})

	t.Run("fail", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection refused")
		results := Fail[[]string](3, boom)
		require.Len(t, results, 3)
		for _, r := range results {
			assert.Nil(t, r.Data)
			assert.ErrorIs(t, r.Error, boom)
		}
	})
}

type loaders struct {
	name string
}

func TestWithLoaders(t *testing.T) {
	t.Parallel()

	ctx := WithLoaders(context.Background(), &loaders{name: "request"})
	got := For[*loaders](ctx)
	require.NotNil(t, got)
	assert.Equal(t, "request", got.name)

	assert.Nil(t, For[*loaders](context.Background()))
	assert.Nil(t, For[*loaders](WithLoaders(context.Background(), "other type")))
}
