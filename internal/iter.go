// Package internal holds helpers shared by the dcpu16 packages.
package internal

import (
	"iter"
)

// Chain yields the pairs of each sequence in turn.
// Later sequences may repeat keys already yielded.
func Chain[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
