package cpu

const (
	QUEUE_LIMIT = 256 // Maximum queued interrupts
)

// Queue is the interrupt message ring.
type Queue struct {
	data  [QUEUE_LIMIT]uint16
	head  int
	count int
}

// Push appends a message, returning false if the queue is full.
func (q *Queue) Push(value uint16) (ok bool) {
	if q.Full() {
		return
	}

	q.data[(q.head+q.count)%QUEUE_LIMIT] = value
	q.count++

	return true
}

func (q *Queue) Pop() (value uint16, ok bool) {
	value, ok = q.Peek()
	if ok {
		q.head = (q.head + 1) % QUEUE_LIMIT
		q.count--
	}
	return
}

func (q *Queue) Peek() (value uint16, ok bool) {
	if q.Empty() {
		return
	}

	return q.data[q.head], true
}

func (q *Queue) Len() int {
	return q.count
}

func (q *Queue) Empty() bool {
	return q.count == 0
}

func (q *Queue) Full() bool {
	return q.count == QUEUE_LIMIT
}

func (q *Queue) Reset() {
	q.head = 0
	q.count = 0
}
