package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	// Create a buffer to write our multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Create form file
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	// Parse the multipart form
	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile_Success(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"PNG file", "test.png"},
		{"JPG file", "site_photo.jpg"},
		{"JPEG file", "wan_photo.jpeg"},
		{"uppercase extension", "test.PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(tt.filename, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateImageFile(fileHeader)
			assert.NoError(t, err)
		})
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	// Test with file exceeding size limit (11MB)
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"GIF file", "test.gif"},
		{"text file", "notes.txt"},
		{"no extension", "testfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte("fake content")
			fileHeader := createTestFileHeader(tt.filename, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateImageFile(fileHeader)
			assert.Error(t, err)

			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
		})
	}
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("fake jpeg content")
	fileHeader := createTestFileHeader("site photo.JPG", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	filename, err := SaveUploadedFile(fileHeader, tmpDir)
	require.NoError(t, err)

	// Generated name keeps the (lowercased) extension but not the original name
	assert.Equal(t, ".jpg", filepath.Ext(filename))
	assert.NotContains(t, filename, "site photo")

	saved, err := os.ReadFile(filepath.Join(tmpDir, filename))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestSaveUploadedFile_UniqueNames(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("fake png content")
	first := createTestFileHeader("same.png", int64(len(content)), content)
	second := createTestFileHeader("same.png", int64(len(content)), content)
	require.NotNil(t, first)
	require.NotNil(t, second)

	name1, err := SaveUploadedFile(first, tmpDir)
	require.NoError(t, err)
	name2, err := SaveUploadedFile(second, tmpDir)
	require.NoError(t, err)

	assert.NotEqual(t, name1, name2, "Repeated uploads of the same filename must not collide")
}

func TestGetImageURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/abc.png", GetImageURL("abc.png"))
	assert.Equal(t, "", GetImageURL(""))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
