package utils

import (
	"io"
	"sync"
)

// SynchronizedWriter serializes writes coming from concurrently running format steps, so each diagnostic line
// reaches the underlying writer in one piece. Writers exposing Flush are flushed after every write.
type SynchronizedWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewSynchronizedWriter wraps writer. Wrapping an already synchronized writer returns it unchanged.
func NewSynchronizedWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return io.Discard
	}
	if _, alreadyWrapped := writer.(*SynchronizedWriter); alreadyWrapped {
		return writer
	}
	return &SynchronizedWriter{writer: writer}
}

// Write delegates to the underlying writer under a lock and flushes it when possible.
func (synchronizedWriter *SynchronizedWriter) Write(data []byte) (int, error) {
	synchronizedWriter.mutex.Lock()
	defer synchronizedWriter.mutex.Unlock()

	bytesWritten, writeError := synchronizedWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, implementsFlush := synchronizedWriter.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
