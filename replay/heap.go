// Copyright (c) 2024 Neomantra Corp
//
// Binary heap over (ts_init, file_index) priority tuples, the data
// structure spec.md §9's redesign notes name explicitly for the
// generator/coroutine merge: "an iterator state machine holding one
// bounded buffer per source, a binary heap over (ts_init, file_index)
// priority tuples".

package replay

import "container/heap"

type heapItem[T any] struct {
	rec       T
	ts        uint64
	fileIndex int
}

type tsHeap[T any] []heapItem[T]

func (h tsHeap[T]) Len() int { return len(h) }

func (h tsHeap[T]) Less(i, j int) bool {
	if h[i].ts != h[j].ts {
		return h[i].ts < h[j].ts
	}
	return h[i].fileIndex < h[j].fileIndex
}

func (h tsHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *tsHeap[T]) Push(x any) {
	*h = append(*h, x.(heapItem[T]))
}

func (h *tsHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*tsHeap[int])(nil)
