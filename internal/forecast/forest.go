package forecast

import (
	"math"
	"math/rand"
	"sort"
)

// The predictor is a bagged ensemble of CART regression trees: each tree is
// grown on a bootstrap resample of the training rows, splits minimize the
// summed squared error of the two sides, and the ensemble predicts the mean
// of its trees. All randomness flows from one seeded source, so a fixed seed
// and fixed input reproduce the model exactly.

type treeNode struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *treeNode `json:"l,omitempty"`
	Right     *treeNode `json:"r,omitempty"`
	Value     float64   `json:"v"`
	Leaf      bool      `json:"leaf,omitempty"`
}

type forest struct {
	Trees    []*treeNode `json:"trees"`
	Features int         `json:"features"`
}

type treeConfig struct {
	maxDepth int
	minLeaf  int
}

func fitForest(X [][]float64, y []float64, trees int, cfg treeConfig, rng *rand.Rand) *forest {
	f := &forest{
		Trees:    make([]*treeNode, 0, trees),
		Features: len(X[0]),
	}

	n := len(X)
	for t := 0; t < trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.Trees = append(f.Trees, growTree(X, y, sample, 0, cfg))
	}
	return f
}

func growTree(X [][]float64, y []float64, idx []int, depth int, cfg treeConfig) *treeNode {
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf {
		return &treeNode{Leaf: true, Value: mean}
	}

	feature, threshold, ok := bestSplit(X, y, idx, cfg.minLeaf)
	if !ok {
		return &treeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Value:     mean,
		Left:      growTree(X, y, left, depth+1, cfg),
		Right:     growTree(X, y, right, depth+1, cfg),
	}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of both sides, honoring the minimum leaf size. ok is false
// when no feature has two distinct values to split on.
func bestSplit(X [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	type pair struct {
		value  float64
		target float64
	}

	n := len(idx)
	bestSSE := math.Inf(1)
	pairs := make([]pair, n)

	for f := 0; f < len(X[idx[0]]); f++ {
		for k, i := range idx {
			pairs[k] = pair{value: X[i][f], target: y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, p := range pairs {
			totalSum += p.target
			totalSq += p.target * p.target
		}

		for k := 0; k < n-1; k++ {
			leftSum += pairs[k].target
			leftSq += pairs[k].target * pairs[k].target

			size := k + 1
			if size < minLeaf || n-size < minLeaf {
				continue
			}
			if pairs[k].value == pairs[k+1].value {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(size)) +
				(rightSq - rightSum*rightSum/float64(n-size))
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = (pairs[k].value + pairs[k+1].value) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.Leaf && n.Left != nil && n.Right != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func (f *forest) predict(x []float64) float64 {
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.predict(x)
	}
	return sum / float64(len(f.Trees))
}
