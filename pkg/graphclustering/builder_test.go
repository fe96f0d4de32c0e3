package graphclustering

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		adj  AdjacencyMap
		want []Cluster
	}{
		{
			name: "empty",
			adj:  AdjacencyMap{},
			want: nil,
		},
		{
			name: "pair and singleton",
			adj:  AdjacencyMap{"1": {"2"}, "2": {"1"}, "3": {}},
			want: []Cluster{{ID: 1, Members: []string{"1", "2"}}, {ID: 2, Members: []string{"3"}}},
		},
		{
			name: "transitive chain",
			adj:  AdjacencyMap{"1": {"2"}, "2": {"3"}, "3": {}},
			want: []Cluster{{ID: 1, Members: []string{"1", "2", "3"}}},
		},
		{
			name: "asymmetric hit still links",
			adj:  AdjacencyMap{"5": {}, "4": {"5"}},
			want: []Cluster{{ID: 1, Members: []string{"4", "5"}}},
		},
		{
			name: "target without entry",
			adj:  AdjacencyMap{"1": {"7"}},
			want: []Cluster{{ID: 1, Members: []string{"1", "7"}}},
		},
		{
			name: "self hits ignored",
			adj:  AdjacencyMap{"1": {"1"}, "2": {"2", "1"}},
			want: []Cluster{{ID: 1, Members: []string{"1", "2"}}},
		},
		{
			name: "numeric order",
			adj:  AdjacencyMap{"10": {"9"}, "9": {}, "100": {}, "2": {"10"}, "abc": {}},
			want: []Cluster{
				{ID: 1, Members: []string{"2", "9", "10"}},
				{ID: 2, Members: []string{"100"}},
				{ID: 3, Members: []string{"abc"}},
			},
		},
		{
			name: "two seeds sharing a neighbour",
			adj:  AdjacencyMap{"1": {"3", "4"}, "2": {"3", "4"}, "3": {}, "4": {}},
			want: []Cluster{{ID: 1, Members: []string{"1", "2", "3", "4"}}},
		},
		{
			name: "clique",
			adj:  AdjacencyMap{"1": {"2", "3"}, "2": {"1", "3"}, "3": {"1", "2"}},
			want: []Cluster{{ID: 1, Members: []string{"1", "2", "3"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(context.Background(), tt.adj)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildPartitionsRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(60)
		adj := AdjacencyMap{}
		parent := make([]int, n)
		for i := range parent {
			parent[i] = i
			adj[fmt.Sprint(i)] = []string{}
		}
		var find func(int) int
		find = func(x int) int {
			for parent[x] != x {
				parent[x] = parent[parent[x]]
				x = parent[x]
			}
			return x
		}
		for e := rng.Intn(n); e > 0; e-- {
			a, b := rng.Intn(n), rng.Intn(n)
			adj.Add(fmt.Sprint(a), fmt.Sprint(b))
			parent[find(a)] = find(b)
		}

		clusters, err := Build(context.Background(), adj)
		require.NoError(t, err)

		seen := map[string]int{}
		for i, c := range clusters {
			assert.Equal(t, i+1, c.ID)
			assert.True(t, slices.IsSortedFunc(c.Members, CompareIDs))
			root := -1
			for _, m := range c.Members {
				_, dup := seen[m]
				require.False(t, dup, "%s in two clusters", m)
				seen[m] = c.ID

				var v int
				_, _ = fmt.Sscan(m, &v)
				if root == -1 {
					root = find(v)
				}
				assert.Equal(t, root, find(v), "cluster %d mixes components", c.ID)
			}
		}
		assert.Len(t, seen, n)

		roots := map[int]struct{}{}
		for i := 0; i < n; i++ {
			roots[find(i)] = struct{}{}
		}
		assert.Len(t, clusters, len(roots))
	}
}

func TestAbsorb(t *testing.T) {
	b := NewBuilder(AdjacencyMap{"1": {"2"}, "2": {}, "3": {}})
	assert.Equal(t, 3, b.Len())

	i, ok := b.Index("1")
	require.True(t, ok)
	j, _ := b.Index("2")

	adj, ok := b.Absorb(i)
	require.True(t, ok)
	assert.Equal(t, []int{j}, adj)
	assert.Equal(t, 2, b.Len())

	adj, ok = b.Absorb(i)
	assert.False(t, ok, "an absorbed entry cannot be absorbed again")
	assert.Nil(t, adj)
	assert.Equal(t, 2, b.Len())

	_, ok = b.Absorb(99)
	assert.False(t, ok)

	clusters, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	if diff := cmp.Diff([]Cluster{{ID: 1, Members: []string{"2"}}, {ID: 2, Members: []string{"3"}}}, clusters); diff != "" {
		t.Errorf("Build() after Absorb mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDeepChain(t *testing.T) {
	adj := AdjacencyMap{}
	const n = 200000
	for i := 0; i < n-1; i++ {
		adj[fmt.Sprint(i)] = []string{fmt.Sprint(i + 1)}
	}
	clusters, err := Build(context.Background(), adj)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, n)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, AdjacencyMap{"1": {}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareIDs(t *testing.T) {
	ids := []string{"b", "10", "a", "9", "007", "7", "100", "x1"}
	slices.SortFunc(ids, CompareIDs)
	assert.Equal(t, []string{"007", "7", "9", "10", "100", "a", "b", "x1"}, ids)
}

func TestClusterKey(t *testing.T) {
	a := Cluster{ID: 1, Members: []string{"1", "2"}}
	b := Cluster{ID: 9, Members: []string{"1", "2"}}
	c := Cluster{ID: 1, Members: []string{"12"}}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.True(t, c.Singleton())
	assert.False(t, a.Singleton())
}
