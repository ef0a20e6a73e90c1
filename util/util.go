package util

import (
	"os"
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func ReadFileOrPanic(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("Couldn't read file: " + err.Error())
	}
	return data
}

// FoldNote transposes a pitch by octaves until it lies inside [lo, hi].
func FoldNote(note int, lo int, hi int) uint8 {
	for note > hi {
		note -= 12
	}
	for note < lo {
		note += 12
	}
	return uint8(note)
}
