package sync

import "fmt"

// Summary aggregates the per-file results of one run.
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
	Bytes    int64
}

// Summarize folds a result sequence into run totals
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusUploaded:
			s.Uploaded++
			s.Bytes += r.Bytes
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Err returns a non-nil error when at least one file failed, so the caller
// can map the run outcome to a process exit code.
func (s Summary) Err() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", s.Failed, s.Uploaded+s.Skipped+s.Failed)
	}
	return nil
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	} else if bytes < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
}
