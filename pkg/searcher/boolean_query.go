package searcher

import "sort"

// PostingListIntersection2 intersects two sorted posting lists.
func PostingListIntersection2(a, b []string) []string {
	idx1, idx2 := 0, 0
	result := []string{}

	for idx1 < len(a) && idx2 < len(b) {
		if a[idx1] < b[idx2] {
			idx1++
		} else if b[idx2] < a[idx1] {
			idx2++
		} else {
			result = append(result, a[idx1])
			idx1++
			idx2++
		}
	}
	return result
}

// IntersectAll ANDs sorted posting lists, shortest first. No lists means no documents.
func IntersectAll(postingLists [][]string) []string {
	if len(postingLists) == 0 {
		return []string{}
	}

	lists := make([][]string, len(postingLists))
	copy(lists, postingLists)
	sort.SliceStable(lists, func(i, j int) bool {
		return len(lists[i]) < len(lists[j])
	})

	result := lists[0]
	for _, postingList := range lists[1:] {
		if len(result) == 0 {
			break
		}
		result = PostingListIntersection2(result, postingList)
	}

	out := make([]string, len(result))
	copy(out, result)
	return out
}
