package domain

// Picture is a stored listing image. Key addresses the object in blob storage;
// URL is what clients load.
type Picture struct {
	Key         string
	URL         string
	ContentType string
	IsCover     bool
}

// NewPicture is an uploaded image that has not been stored yet.
type NewPicture struct {
	Content     []byte
	ContentType string
	IsCover     bool
}
