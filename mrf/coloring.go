package mrf

// ComputeColoring assigns every vertex the smallest color not taken by a
// lower-indexed neighbor and returns the number of colors used. The
// result is cached; adjacent vertices always receive distinct colors.
//
// Not safe to run concurrently with graph mutation.
func (g *Graph) ComputeColoring() int {
	if g.colors != nil {
		return g.numColors
	}

	n := len(g.vertices)
	colors := make([]uint32, n)
	used := make([]bool, n+1)

	maxColor := uint32(0)
	for v := 0; v < n; v++ {
		// Lower-indexed neighbors are already colored.
		for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
			if t := g.edges[e].target; int(t) < v {
				used[colors[t]] = true
			}
		}

		c := uint32(0)
		for used[c] {
			c++
		}
		colors[v] = c
		if c > maxColor {
			maxColor = c
		}

		for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
			if t := g.edges[e].target; int(t) < v {
				used[colors[t]] = false
			}
		}
	}

	g.colors = colors
	if n == 0 {
		g.numColors = 0
	} else {
		g.numColors = int(maxColor) + 1
	}

	return g.numColors
}

// Color returns v's color, computing the coloring on first use.
func (g *Graph) Color(v VertexID) uint32 {
	g.ComputeColoring()
	return g.colors[v]
}
