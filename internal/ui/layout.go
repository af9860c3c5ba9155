package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which secondary columns are hidden.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the file preview beside its details.
	LayoutWideWidth = 140
)

// Fetch limits.
const (
	// PreviewLimit caps how much of a text file is fetched for the preview pane.
	PreviewLimit = 1 << 20

	// DownloadLimit caps downloads and content copies; zero means unlimited.
	DownloadLimit = 0
)

// pageSizes are the steps +/- move between.
var pageSizes = []int{5, 10, 20, 50, 100}

// nextPageSize returns the next page size step above (or below, when grow is
// false) the current one.
func nextPageSize(current int, grow bool) int {
	if grow {
		for _, n := range pageSizes {
			if n > current {
				return n
			}
		}
		return pageSizes[len(pageSizes)-1]
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < current {
			return pageSizes[i]
		}
	}
	return pageSizes[0]
}

// pageFor returns the page holding the first item of page under the old size
// once the page size changes.
func pageFor(page, oldSize, newSize int) int {
	if page < 1 || oldSize < 1 || newSize < 1 {
		return 1
	}
	return (page-1)*oldSize/newSize + 1
}
