package liveview

import "iter"

// Groups walks rows already sorted by key and yields one (key, group)
// pair per contiguous run, flushing a group the moment the next key is
// seen and the final group when the input ends. The sequence is lazy,
// single-pass, and not restartable; consume it exactly once per query
// execution.
func Groups[R any, K comparable](rows iter.Seq[R], keyOf func(R) K) iter.Seq2[K, []R] {
	return func(yield func(K, []R) bool) {
		var (
			current K
			group   []R
			started bool
		)
		for row := range rows {
			key := keyOf(row)
			if !started {
				started = true
				current = key
			} else if key != current {
				if !yield(current, group) {
					return
				}
				current = key
				group = nil
			}
			group = append(group, row)
		}
		if started {
			yield(current, group)
		}
	}
}
