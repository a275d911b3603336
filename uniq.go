package gravel

// Distinct returns, in sort order, the index of the first element of every
// run of equal elements in the sort map.
func Distinct(sortMap []int, c Comparator) []int {
	checkMap(sortMap, c.Len())
	var out []int
	for i, j := range sortMap {
		if i > 0 && SortCompare(c, sortMap[i-1], j) == 0 {
			continue
		}
		out = append(out, j)
	}
	return out
}
