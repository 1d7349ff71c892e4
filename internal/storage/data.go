package storage

type WriteResult struct {
	path        string
	contentHash string // short digest of the bytes written
	size        int
}

func NewWriteResult(
	path string,
	contentHash string,
	size int,
) WriteResult {
	return WriteResult{
		path:        path,
		contentHash: contentHash,
		size:        size,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) Size() int {
	return w.size
}
