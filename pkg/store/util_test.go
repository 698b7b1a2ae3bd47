package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestChunkRange_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		chunkSize int
		want      [][2]int
	}{
		{name: "empty", total: 0, chunkSize: 10, want: nil},
		{name: "single partial chunk", total: 3, chunkSize: 10, want: [][2]int{{0, 3}}},
		{name: "exact chunks", total: 20, chunkSize: 10, want: [][2]int{{0, 10}, {10, 20}}},
		{name: "trailing partial", total: 25, chunkSize: 10, want: [][2]int{{0, 10}, {10, 20}, {20, 25}}},
		{name: "zero chunk size takes all", total: 5, chunkSize: 0, want: [][2]int{{0, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [][2]int
			err := ChunkRange(tt.total, tt.chunkSize, func(start, end int) error {
				got = append(got, [2]int{start, end})
				return nil
			})
			if err != nil {
				t.Fatalf("ChunkRange() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChunkRange(%d, %d) visited %v, want %v", tt.total, tt.chunkSize, got, tt.want)
			}
		})
	}
}

func TestChunkRange_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := ChunkRange(30, 10, func(start, end int) error {
		calls++
		if start == 10 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ChunkRange() error = %v, want boom", err)
	}
	if calls != 2 {
		t.Errorf("ChunkRange() made %d calls before stopping, want 2", calls)
	}
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeStrings() = %v, want %v", got, want)
	}
	if DedupeStrings(nil) != nil {
		t.Error("DedupeStrings(nil) should stay nil")
	}
}
