package grid

import (
	"fmt"
	"reflect"
	"testing"
)

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols (Standard)
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{127, 64, 63, 1},
		{1023, 64, 63, 15},

		// 32 cols (Narrow)
		{0, 32, 0, 0},
		{31, 32, 31, 0},
		{32, 32, 0, 1},
		{1023, 32, 31, 31},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestBufferLines(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   []string
	}{
		{"empty", nil, nil},
		{"one line", []string{"hello\n"}, []string{"hello"}},
		{"partial line", []string{"hel", "lo"}, []string{"hello"}},
		{"crlf", []string{"a\r\nb\r\n"}, []string{"a", "b"}},
		{"blank line", []string{"\n"}, []string{""}},
		{"wrap", []string{"abcdefghij\n"}, []string{"abcd", "efgh", "ij"}},
		{"exact width", []string{"abcd\nx\n"}, []string{"abcd", "x"}},
		{"scroll", []string{"1\n2\n3\n4\n5\n"}, []string{"3", "4", "5"}},
		{"scroll with partial", []string{"1\n2\n3\n4"}, []string{"2", "3", "4"}},
	}
	for _, tc := range tests {
		b := NewBuffer(4, 3)
		for _, w := range tc.writes {
			fmt.Fprint(b, w)
		}
		if got := b.Lines(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: Lines() = %q; want %q", tc.name, got, tc.want)
		}
	}
}

func TestBufferCell(t *testing.T) {
	b := NewBuffer(4, 3)
	fmt.Fprint(b, "ab\ncdef\ng")
	tests := []struct {
		index int
		want  rune
	}{
		{0, 'a'},
		{1, 'b'},
		{2, 0},
		{4, 'c'},
		{7, 'f'},
		{8, 'g'},
		{9, 0},
		{11, 0},
	}
	for _, tc := range tests {
		if got := b.Cell(tc.index); got != tc.want {
			t.Errorf("Cell(%d) = %q; want %q", tc.index, got, tc.want)
		}
	}
}
