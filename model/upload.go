package model

// UploadInput is what a storage backend receives after the transcode
// step. Data is always the processed JPEG bytes.
type UploadInput struct {
	Data        []byte
	ContentType string
	PublicID    string
	FileName    string
}

// UploadResult is the storage backend's view of a stored object.
type UploadResult struct {
	URL    string
	Bytes  int64
	Format string
}

// ImageData is the client-supplied description of an already-uploaded
// image, used when registering it in the publish queue.
type ImageData struct {
	URL   string `json:"url"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Notes string `json:"notes,omitempty"`
}
