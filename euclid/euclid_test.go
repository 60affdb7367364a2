package euclid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEuclideanTresillo(t *testing.T) {
	got := Euclidean(8, 3)
	want := []int{1, 0, 0, 1, 0, 0, 1, 0}
	assert.Equal(t, want, got)
}

func TestBjorklundHitCount(t *testing.T) {
	got := Bjorklund(16, 5, 0)
	require := assert.New(t)
	require.Len(got, 16)
	hits := 0
	for _, v := range got {
		if v == 1 {
			hits++
		}
	}
	require.Equal(5, hits)
}

func TestBjorklundAllHits(t *testing.T) {
	got := Bjorklund(4, 4, 0)
	want := []int{1, 1, 1, 1}
	assert.Equal(t, want, got)
}

func TestBjorklundZeroHits(t *testing.T) {
	got := Bjorklund(4, 0, 0)
	want := []int{0, 0, 0, 0}
	assert.Equal(t, want, got)
}

func TestBjorklundRotation(t *testing.T) {
	base := Bjorklund(8, 3, 0)
	rotated := Bjorklund(8, 3, 1)
	want := rotate(append([]int{}, base...), 1)
	assert.Equal(t, want, rotated)
}

func TestActiveSteps(t *testing.T) {
	got := ActiveSteps([]int{1, 0, 0, 1, 0, 0, 1, 0})
	want := []int{0, 3, 6}
	assert.Equal(t, want, got)
}
