package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRanges(t *testing.T) {
	assert.Nil(t, mergeRanges(nil))

	merged := mergeRanges([]SlotRange{
		{From: 20, To: 25},
		{From: 1, To: 5},
		{From: 6, To: 10},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, uint64(1), merged[0].From)
	assert.Equal(t, uint64(25), merged[0].To)

	// 超过 maxRangeSize 的区间被拆分
	merged = mergeRanges([]SlotRange{{From: 1, To: maxRangeSize + 10}})
	require.Len(t, merged, 2)
	assert.Equal(t, uint64(maxRangeSize), merged[0].To)
	assert.Equal(t, uint64(maxRangeSize+1), merged[1].From)
	assert.Equal(t, uint64(maxRangeSize+10), merged[1].To)
}

func TestFillEmptySlots(t *testing.T) {
	empty := make(map[uint64]struct{})
	fillEmptySlots(10, 20, []uint64{12, 15, 19, 11}, empty)
	for _, slot := range []uint64{10, 13, 14, 16, 17, 18, 20} {
		assert.Contains(t, empty, slot)
	}
	assert.Len(t, empty, 7)

	empty = make(map[uint64]struct{})
	fillEmptySlots(1, 3, nil, empty)
	assert.Len(t, empty, 3)

	empty = make(map[uint64]struct{})
	fillEmptySlots(1, 3, []uint64{1, 2, 3}, empty)
	assert.Empty(t, empty)
}

func TestSlotInFailedRanges(t *testing.T) {
	failed := []SlotRange{{From: 10, To: 20}, {From: 40, To: 50}}
	assert.True(t, slotInFailedRanges(10, failed))
	assert.True(t, slotInFailedRanges(45, failed))
	assert.False(t, slotInFailedRanges(5, failed))
	assert.False(t, slotInFailedRanges(30, failed))
	assert.False(t, slotInFailedRanges(51, failed))
}

func TestCheckSlotRanges(t *testing.T) {
	var reported []uint64
	s := newSlotChecker(func(_ context.Context, from, to uint64) ([]uint64, error) {
		// 101 与 104 实际出块，其它为空块
		return []uint64{100, 101, 104, 106}, nil
	}, func(slots []uint64) { reported = slots })

	missing := s.checkSlotRanges([]SlotRange{{From: 101, To: 105}, {From: 104, To: 104}})
	assert.Equal(t, []uint64{101, 104}, missing)
	assert.Equal(t, missing, reported)
}

func TestCheckSlotRangesRpcFailure(t *testing.T) {
	var calls atomic.Int32
	called := false
	s := newSlotChecker(func(context.Context, uint64, uint64) ([]uint64, error) {
		calls.Add(1)
		return nil, errors.New("rpc down")
	}, func([]uint64) { called = true })

	assert.Empty(t, s.checkSlotRanges([]SlotRange{{From: 1, To: 3}}))
	assert.False(t, called)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSlotCheckerRun(t *testing.T) {
	reported := make(chan []uint64, 1)
	s := newSlotChecker(func(context.Context, uint64, uint64) ([]uint64, error) {
		return []uint64{7}, nil
	}, func(slots []uint64) { reported <- slots })
	s.delay = 0
	s.interval = 20 * time.Millisecond

	go s.Start()
	defer s.Stop()

	s.Submit(9, 8) // 非法区间被忽略
	s.Submit(6, 8)

	select {
	case slots := <-reported:
		assert.Equal(t, []uint64{7}, slots)
	case <-time.After(3 * time.Second):
		t.Fatal("missing slots not reported")
	}
}
