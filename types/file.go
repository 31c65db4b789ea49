package types

// ImageFile describes a stored image as returned by the listing endpoint.
type ImageFile struct {
	// Filename is the generated name under which the image is stored.
	Filename string `json:"filename"`

	// URL is the public path the image is served from.
	URL string `json:"url"`
}

// UploadedFile describes a single file accepted by an upload request.
type UploadedFile struct {
	// Filename is the generated name the file was stored under.
	Filename string `json:"filename"`

	// OriginalName is the client-supplied file name.
	OriginalName string `json:"originalname"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// MimeType is the content type declared by the client.
	MimeType string `json:"mimetype"`
}
