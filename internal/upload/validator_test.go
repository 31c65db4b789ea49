package upload

import (
	"errors"
	"fmt"
	"testing"
)

func pngFile(name string, size int64) FileInfo {
	return FileInfo{OriginalName: name, MimeType: "image/png", Size: size}
}

func TestValidateBatchAccepts(t *testing.T) {
	v := NewValidator(DefaultMaxFiles, DefaultMaxFileSize)

	files := []FileInfo{
		{OriginalName: "photo.jpg", MimeType: "image/jpeg", Size: 1024},
		{OriginalName: "PHOTO.JPEG", MimeType: "image/jpeg", Size: 2048},
		{OriginalName: "anim.gif", MimeType: "image/gif", Size: 512},
		{OriginalName: "pic.webp", MimeType: "image/webp", Size: 256},
		pngFile("shot.png", 1<<10),
	}
	if err := v.ValidateBatch(files); err != nil {
		t.Fatalf("expected batch to pass, got %v", err)
	}
}

func TestValidateBatchTooManyFiles(t *testing.T) {
	v := NewValidator(10, DefaultMaxFileSize)

	files := make([]FileInfo, 11)
	for i := range files {
		files[i] = pngFile(fmt.Sprintf("img%d.png", i), 100)
	}
	if err := v.ValidateBatch(files); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
}

func TestValidateBatchFileTooLarge(t *testing.T) {
	v := NewValidator(10, 5<<20)

	files := []FileInfo{
		pngFile("small.png", 1<<10),
		pngFile("big.png", 6<<20),
	}
	err := v.ValidateBatch(files)
	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected FileTooLargeError, got %v", err)
	}
	if tooLarge.Name != "big.png" {
		t.Fatalf("expected offending file big.png, got %q", tooLarge.Name)
	}
}

func TestValidateBatchUnsupportedTypes(t *testing.T) {
	v := NewValidator(10, 5<<20)

	cases := []struct {
		name string
		file FileInfo
	}{
		{name: "mime and extension disagree", file: FileInfo{OriginalName: "virus.exe", MimeType: "image/jpeg", Size: 10}},
		{name: "unsupported mime", file: FileInfo{OriginalName: "doc.png", MimeType: "application/pdf", Size: 10}},
		{name: "unsupported extension", file: FileInfo{OriginalName: "notes.txt", MimeType: "image/png", Size: 10}},
		{name: "no extension", file: FileInfo{OriginalName: "image", MimeType: "image/png", Size: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateBatch([]FileInfo{tc.file})
			var badType *UnsupportedFileTypeError
			if !errors.As(err, &badType) {
				t.Fatalf("expected UnsupportedFileTypeError, got %v", err)
			}
			if badType.Name != tc.file.OriginalName {
				t.Fatalf("expected offending file %q, got %q", tc.file.OriginalName, badType.Name)
			}
		})
	}
}

func TestValidationOrderCountBeforeSize(t *testing.T) {
	v := NewValidator(2, 5<<20)

	// Batch violates both the count and size limits; count wins.
	files := []FileInfo{
		pngFile("a.png", 6<<20),
		pngFile("b.png", 6<<20),
		pngFile("c.png", 6<<20),
	}
	if err := v.ValidateBatch(files); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles first, got %v", err)
	}
}

func TestValidationOrderSizeBeforeType(t *testing.T) {
	v := NewValidator(10, 5<<20)

	// One oversized valid file and one bad type; size wins.
	files := []FileInfo{
		pngFile("big.png", 6<<20),
		{OriginalName: "virus.exe", MimeType: "image/jpeg", Size: 10},
	}
	err := v.ValidateBatch(files)
	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected FileTooLargeError first, got %v", err)
	}
}

func TestAllowedType(t *testing.T) {
	if !AllowedType("image/jpeg", "photo.JPG") {
		t.Fatalf("expected uppercase extension to be accepted")
	}
	if AllowedType("image/jpeg", "photo.exe") {
		t.Fatalf("expected exe extension to be rejected")
	}
	if AllowedType("text/html", "photo.jpg") {
		t.Fatalf("expected non-image mime to be rejected")
	}
}
