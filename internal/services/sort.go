package services

import "github.com/dmitrijs2005/taskkeeper/internal/models"

// mergeSort sorts s in place with a stable bottom-up merge sort: elements
// for which neither less(a, b) nor less(b, a) holds keep their input order.
func mergeSort[T any](s []T, less func(a, b T) bool) {
	n := len(s)
	if n < 2 {
		return
	}

	buf := make([]T, n)
	src, dst := s, buf

	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			merge(dst[lo:hi], src[lo:mid], src[mid:hi], less)
		}
		src, dst = dst, src
	}

	// after an odd number of passes the result sits in buf
	if &src[0] != &s[0] {
		copy(s, src)
	}
}

func merge[T any](dst, left, right []T, less func(a, b T) bool) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		// take from right only when strictly smaller, so ties stay stable
		if less(right[j], left[i]) {
			dst[k] = right[j]
			j++
		} else {
			dst[k] = left[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}

// taskLess is the default listing order: priority High to Low, then due
// date ascending with undated tasks last, then creation time ascending.
func taskLess(a, b models.Task) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra > rb
	}

	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}

	return a.CreatedAt.Before(b.CreatedAt)
}
