package domain

import "time"

// CatalogStats describes the catalog generation currently being served.
type CatalogStats struct {
	// Generation is the index version. Zero means nothing has loaded yet.
	Generation uint64

	// Source names where the snapshot came from.
	Source string

	// Records is the number of rows in the snapshot.
	Records int

	// Skipped counts rows dropped because they were not JSON objects.
	Skipped int

	// Descriptions, Brands, EANs and IDs count distinct keys per index.
	Descriptions int
	Brands       int
	EANs         int
	IDs          int

	// LoadedAt is when the generation was swapped in.
	LoadedAt time.Time

	// LastError is the most recent load failure, empty after a success.
	LastError string
}

// ExportResult reports where an export was written.
type ExportResult struct {
	// FileName is the delimited text file name.
	FileName string

	// Location is where the file sink stored it.
	Location string

	// Rows is the number of observations exported.
	Rows int

	// Uploaded is true when the JSON upload succeeded.
	Uploaded bool

	// UploadName is the name used for the JSON upload.
	UploadName string

	// UploadErr is set when the upload was attempted and failed.
	UploadErr error
}
