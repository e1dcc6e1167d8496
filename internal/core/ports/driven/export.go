package driven

import "context"

// FileSink stores export files on the device.
type FileSink interface {
	// Save writes data under name and returns where it was stored.
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Uploader sends an export blob to a remote object store.
type Uploader interface {
	// Upload stores data remotely under name.
	Upload(ctx context.Context, name, contentType string, data []byte) error
}
