package utils

// GroupBy 按 key 分组, 分组顺序和组内元素顺序都保持与输入一致.
func GroupBy[T any, K comparable](list []T, keyFn func(item T) K) [][]T {
	index := map[K]int{}
	var groups [][]T

	for _, elem := range list {
		key := keyFn(elem)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], elem)
	}
	return groups
}

func CastTo[T any](src any) (target T, ok bool) {
	target, ok = src.(T)
	return
}
