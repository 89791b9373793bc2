package analyzer

// rowStrip is a half-open range of rows [start, end)
type rowStrip struct {
	start, end int
}

// splitRows divides height rows into at most n contiguous strips
func splitRows(height, n int) []rowStrip {
	if height <= 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if height < n {
		n = height
	}
	rowsPerWorker := (height + n - 1) / n // ceil division

	strips := make([]rowStrip, 0, n)
	for start := 0; start < height; start += rowsPerWorker {
		end := start + rowsPerWorker
		if end > height {
			end = height
		}
		strips = append(strips, rowStrip{start, end})
	}
	return strips
}

// firstSampledRow returns the first row >= start that lies on the stride grid
func firstSampledRow(start, stride int) int {
	return ((start + stride - 1) / stride) * stride
}

// scanRows runs fn over horizontal strips and returns the partial results in
// strip order. Strips go to the pool only when the image is large enough.
func scanRows[T any](pool *WorkerPool, width, height, parallelThreshold int, fn func(startY, endY int) T) []T {
	workers := 1
	if pool != nil && width*height >= parallelThreshold {
		workers = pool.Workers()
	}

	strips := splitRows(height, workers)
	results := make([]T, len(strips))
	if len(strips) <= 1 {
		for i, s := range strips {
			results[i] = fn(s.start, s.end)
		}
		return results
	}

	jobs := make([]func(), len(strips))
	for i, s := range strips {
		jobs[i] = func() {
			results[i] = fn(s.start, s.end)
		}
	}
	pool.RunAll(jobs)
	return results
}
