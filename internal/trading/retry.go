package trading

import "sync"

// RetryQueue tracks mints whose most recent buy attempt failed, mapping each
// to its attempt count. Iteration follows insertion order. An entry lives
// until the buy succeeds, the attempt count reaches the ceiling, or it is
// pruned by the drain loop. Safe for concurrent use.
type RetryQueue struct {
	mu     sync.Mutex
	max    int
	counts map[string]int
	order  []string
}

// NewRetryQueue creates a RetryQueue with the given retry ceiling.
func NewRetryQueue(max int) *RetryQueue {
	return &RetryQueue{
		max:    max,
		counts: make(map[string]int),
	}
}

// RecordFailure notes a failed buy attempt for mint. While the attempt count
// is under the ceiling the mint is (re)queued and the post-increment count is
// returned. Once the ceiling is reached the entry is evicted for good and
// abandoned is true; only an external re-signal can revive the mint.
func (q *RetryQueue) RecordFailure(mint string) (attempts int, abandoned bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := q.counts[mint]
	if count >= q.max {
		q.removeLocked(mint)
		return count, true
	}

	if _, queued := q.counts[mint]; !queued {
		q.order = append(q.order, mint)
	}
	q.counts[mint] = count + 1
	return count + 1, false
}

// Next returns the first queued mint eligible for a retry, in insertion
// order. Entries that already reached the ceiling are pruned as they are
// encountered; pruned mints are reported so the caller can log the
// abandonment.
func (q *RetryQueue) Next() (mint string, attempts int, pruned []string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.order) > 0 {
		head := q.order[0]
		count := q.counts[head]
		if count >= q.max {
			q.removeLocked(head)
			pruned = append(pruned, head)
			continue
		}
		return head, count, pruned, true
	}
	return "", 0, pruned, false
}

// Remove drops mint from the queue, e.g. after a successful purchase.
func (q *RetryQueue) Remove(mint string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(mint)
}

// Attempts returns the recorded attempt count for mint (0 if not queued).
func (q *RetryQueue) Attempts(mint string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[mint]
}

// Len returns the number of queued mints.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.counts)
}

func (q *RetryQueue) removeLocked(mint string) {
	if _, ok := q.counts[mint]; !ok {
		return
	}
	delete(q.counts, mint)
	for i, m := range q.order {
		if m == mint {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}
