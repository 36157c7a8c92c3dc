//go:build !nogpu

package gpu

// pendingUpload is one texture write waiting for the frame's copy pass.
type pendingUpload struct {
	target *Texture
	pixels []byte
	done   func(ok bool)
}

// UploadQueue accumulates texture writes discovered while scanning a frame's
// commands. The Stager drains it in the same copy pass as the geometry, so
// every texture is resident before the render pass begins.
//
// UploadQueue is not safe for concurrent use.
type UploadQueue struct {
	pending []pendingUpload
}

// Push queues a full-texture write. The pixels are copied so the caller may
// reuse its slice immediately. done, if non-nil, runs with true after the
// copy submission has completed, or with false if the queue is aborted.
func (q *UploadQueue) Push(target *Texture, pixels []byte, done func(ok bool)) error {
	if err := target.checkPixels(pixels); err != nil {
		return err
	}
	snapshot := make([]byte, len(pixels))
	copy(snapshot, pixels)
	q.pending = append(q.pending, pendingUpload{target: target, pixels: snapshot, done: done})
	return nil
}

// Len reports the number of queued uploads.
func (q *UploadQueue) Len() int { return len(q.pending) }

// stagingBytes returns the aligned transfer-buffer space the queue needs.
func (q *UploadQueue) stagingBytes() uint64 {
	var total uint64
	for _, u := range q.pending {
		total += alignUp(stagingSize(u.target.Width, u.target.Height, BytesPerPixel(u.target.Format)), copyRowAlignment)
	}
	return total
}

// complete runs completion callbacks and empties the queue.
func (q *UploadQueue) complete() { q.finish(true) }

// Abort empties the queue, telling every producer its write never happened.
func (q *UploadQueue) Abort() { q.finish(false) }

func (q *UploadQueue) finish(ok bool) {
	for _, u := range q.pending {
		if u.done != nil {
			u.done(ok)
		}
	}
	q.Reset()
}

// Reset drops all queued uploads without running their callbacks.
func (q *UploadQueue) Reset() {
	clear(q.pending)
	q.pending = q.pending[:0]
}
