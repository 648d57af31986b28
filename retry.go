package mmctune

// retry calls fn at most n times, stopping at the first nil error.
// attempt starts at 0. The last error is returned.
func retry(n int, fn func(attempt int) error) (err error) {
	for attempt := 0; attempt < n; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
	}
	return err
}
